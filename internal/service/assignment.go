package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"edutrack/internal/apperror"
	"edutrack/internal/model"
	"edutrack/internal/repository"
)

// AssignmentInput is the create payload. Grade and DateCompleted are
// optional; StudentID and SubjectID must reference records owned by the
// caller and consistent with each other.
type AssignmentInput struct {
	StudentID     string
	SubjectID     string
	Name          string
	Notes         string
	DateCompleted string
	Completed     bool
	Grade         *decimal.Decimal
}

// AssignmentPatch carries a partial update. Nil fields are left unchanged.
// The student and subject references are not patchable.
type AssignmentPatch struct {
	Name          *string
	Notes         *string
	DateCompleted *string
	Completed     *bool
	Grade         *decimal.Decimal
}

type AssignmentService struct {
	repo   repository.AssignmentRepository
	logger *slog.Logger
}

func NewAssignmentService(repo repository.AssignmentRepository, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new assignment. The repository enforces the
// parent checks: a foreign subject is apperror.ErrForbidden, a subject that
// belongs to a different student than the payload names is a validation
// error regardless of ownership.
func (s *AssignmentService) Create(ctx context.Context, owner string, in AssignmentInput) (*model.Assignment, error) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
	in.DateCompleted = strings.TrimSpace(in.DateCompleted)

	if in.StudentID == "" {
		return nil, apperror.ValidationFailed("studentId", "studentId is required")
	}
	if in.SubjectID == "" {
		return nil, apperror.ValidationFailed("subjectId", "subjectId is required")
	}
	if err := validateRequiredName("name", in.Name, MaxAssignmentNameLength); err != nil {
		return nil, err
	}
	if err := validateText("notes", in.Notes); err != nil {
		return nil, err
	}
	if in.DateCompleted != "" {
		if err := validateDate("dateCompleted", in.DateCompleted); err != nil {
			return nil, err
		}
	}
	if in.Grade != nil {
		if err := validateGrade(*in.Grade); err != nil {
			return nil, err
		}
	}

	assignment := &model.Assignment{
		StudentID:     in.StudentID,
		SubjectID:     in.SubjectID,
		Name:          in.Name,
		Notes:         in.Notes,
		DateCompleted: in.DateCompleted,
		Completed:     in.Completed,
		Grade:         in.Grade,
	}

	if err := s.repo.CreateAssignment(ctx, owner, assignment); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		s.logger.Error("failed to create assignment",
			slog.String("subjectId", in.SubjectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating assignment: %w", err)
	}

	s.logger.Info("assignment created",
		slog.String("id", assignment.ID),
		slog.String("subjectId", in.SubjectID),
	)

	return assignment, nil
}

// GetByID returns the assignment if its subject's student is owned by
// owner; otherwise apperror.ErrNotFound.
func (s *AssignmentService) GetByID(ctx context.Context, owner, id string) (*model.Assignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "assignment ID is required")
	}
	return s.repo.GetAssignmentByID(ctx, owner, id)
}

// List returns the assignments owned by owner, optionally restricted to
// one subject.
func (s *AssignmentService) List(ctx context.Context, owner, subjectID string) ([]model.Assignment, error) {
	assignments, err := s.repo.ListAssignments(ctx, owner, repository.AssignmentFilter{
		SubjectID: strings.TrimSpace(subjectID),
	})
	if err != nil {
		s.logger.Error("failed to list assignments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	return assignments, nil
}

// Update applies a partial update after the same scoped lookup as GetByID.
func (s *AssignmentService) Update(ctx context.Context, owner, id string, patch AssignmentPatch) (*model.Assignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "assignment ID is required")
	}

	assignment, err := s.repo.GetAssignmentByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateRequiredName("name", name, MaxAssignmentNameLength); err != nil {
			return nil, err
		}
		assignment.Name = name
	}
	if patch.Notes != nil {
		notes := strings.TrimSpace(*patch.Notes)
		if err := validateText("notes", notes); err != nil {
			return nil, err
		}
		assignment.Notes = notes
	}
	if patch.DateCompleted != nil {
		dateCompleted := strings.TrimSpace(*patch.DateCompleted)
		if dateCompleted != "" {
			if err := validateDate("dateCompleted", dateCompleted); err != nil {
				return nil, err
			}
		}
		assignment.DateCompleted = dateCompleted
	}
	if patch.Completed != nil {
		assignment.Completed = *patch.Completed
	}
	if patch.Grade != nil {
		if err := validateGrade(*patch.Grade); err != nil {
			return nil, err
		}
		assignment.Grade = patch.Grade
	}

	if err := s.repo.UpdateAssignment(ctx, owner, assignment); err != nil {
		s.logger.Error("failed to update assignment",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return assignment, nil
}

// Delete removes the assignment.
func (s *AssignmentService) Delete(ctx context.Context, owner, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "assignment ID is required")
	}

	if err := s.repo.DeleteAssignment(ctx, owner, id); err != nil {
		return err
	}

	s.logger.Info("assignment deleted", slog.String("id", id))
	return nil
}
