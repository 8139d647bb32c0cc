package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"edutrack/internal/apperror"
	"edutrack/internal/model"
	"edutrack/internal/repository"
)

// SubjectPatch carries a partial update. Nil fields are left unchanged.
// The student reference is not patchable: a subject cannot move between
// students.
type SubjectPatch struct {
	Name              *string
	CourseDescription *string
	Notes             *string
}

type SubjectService struct {
	repo   repository.SubjectRepository
	logger *slog.Logger
}

func NewSubjectService(repo repository.SubjectRepository, logger *slog.Logger) *SubjectService {
	return &SubjectService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new subject under the given student. The
// repository rejects a student owned by someone else with
// apperror.ErrForbidden — explicitly, because the caller supplied the
// student id and already knows it.
func (s *SubjectService) Create(ctx context.Context, owner, studentID, name, courseDescription, notes string) (*model.Subject, error) {
	studentID = strings.TrimSpace(studentID)
	name = strings.TrimSpace(name)
	courseDescription = strings.TrimSpace(courseDescription)
	notes = strings.TrimSpace(notes)

	if studentID == "" {
		return nil, apperror.ValidationFailed("studentId", "studentId is required")
	}
	if err := validateRequiredName("name", name, MaxSubjectNameLength); err != nil {
		return nil, err
	}
	if err := validateText("courseDescription", courseDescription); err != nil {
		return nil, err
	}
	if err := validateText("notes", notes); err != nil {
		return nil, err
	}

	subject := &model.Subject{
		StudentID:         studentID,
		Name:              name,
		CourseDescription: courseDescription,
		Notes:             notes,
	}

	if err := s.repo.CreateSubject(ctx, owner, subject); err != nil {
		// Forbidden and validation outcomes pass through untouched; only
		// real storage failures get wrapped and logged.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		s.logger.Error("failed to create subject",
			slog.String("studentId", studentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating subject: %w", err)
	}

	s.logger.Info("subject created",
		slog.String("id", subject.ID),
		slog.String("studentId", studentID),
	)

	return subject, nil
}

// GetByID returns the subject if its student is owned by owner; otherwise
// apperror.ErrNotFound.
func (s *SubjectService) GetByID(ctx context.Context, owner, id string) (*model.Subject, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "subject ID is required")
	}
	return s.repo.GetSubjectByID(ctx, owner, id)
}

// List returns the subjects owned by owner, optionally restricted to one
// student. A filter naming a foreign or unknown student yields an empty
// list rather than an error — listing never reveals other users' records.
func (s *SubjectService) List(ctx context.Context, owner, studentID string) ([]model.Subject, error) {
	subjects, err := s.repo.ListSubjects(ctx, owner, repository.SubjectFilter{
		StudentID: strings.TrimSpace(studentID),
	})
	if err != nil {
		s.logger.Error("failed to list subjects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	return subjects, nil
}

// Update applies a partial update after the same scoped lookup as GetByID.
func (s *SubjectService) Update(ctx context.Context, owner, id string, patch SubjectPatch) (*model.Subject, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "subject ID is required")
	}

	subject, err := s.repo.GetSubjectByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateRequiredName("name", name, MaxSubjectNameLength); err != nil {
			return nil, err
		}
		subject.Name = name
	}
	if patch.CourseDescription != nil {
		courseDescription := strings.TrimSpace(*patch.CourseDescription)
		if err := validateText("courseDescription", courseDescription); err != nil {
			return nil, err
		}
		subject.CourseDescription = courseDescription
	}
	if patch.Notes != nil {
		notes := strings.TrimSpace(*patch.Notes)
		if err := validateText("notes", notes); err != nil {
			return nil, err
		}
		subject.Notes = notes
	}

	if err := s.repo.UpdateSubject(ctx, owner, subject); err != nil {
		s.logger.Error("failed to update subject",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return subject, nil
}

// Delete removes the subject and, by cascade, its assignments.
func (s *SubjectService) Delete(ctx context.Context, owner, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "subject ID is required")
	}

	if err := s.repo.DeleteSubject(ctx, owner, id); err != nil {
		return err
	}

	s.logger.Info("subject deleted", slog.String("id", id))
	return nil
}
