// Package service contains the business logic: payload validation and
// ownership orchestration between the HTTP handlers and the repositories.
//
// Every method takes the verified owner identity as its first data
// parameter. The services never read identity from ambient state, and they
// never reach the repository without one — the handler layer rejects
// unauthenticated requests first.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"edutrack/internal/apperror"
	"edutrack/internal/model"
	"edutrack/internal/repository"
)

// StudentPatch carries a partial update. Nil fields are left unchanged.
// There is deliberately no owner field: ownership is fixed at creation.
type StudentPatch struct {
	FirstName *string
	LastName  *string
	BirthDate *string
}

type StudentService struct {
	repo   repository.StudentRepository
	logger *slog.Logger
}

func NewStudentService(repo repository.StudentRepository, logger *slog.Logger) *StudentService {
	return &StudentService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new student owned by owner. Whatever the
// request payload claimed about ownership is irrelevant — the owner is
// always the verified caller.
func (s *StudentService) Create(ctx context.Context, owner, firstName, lastName, birthDate string) (*model.Student, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	birthDate = strings.TrimSpace(birthDate)

	if err := validateRequiredName("firstName", firstName, MaxFirstNameLength); err != nil {
		return nil, err
	}
	if err := validateRequiredName("lastName", lastName, MaxLastNameLength); err != nil {
		return nil, err
	}
	if birthDate == "" {
		return nil, apperror.ValidationFailed("birthDate", "birthDate is required")
	}
	if err := validateDate("birthDate", birthDate); err != nil {
		return nil, err
	}

	student := &model.Student{
		UserID:    owner,
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: birthDate,
	}

	if err := s.repo.CreateStudent(ctx, student); err != nil {
		s.logger.Error("failed to create student", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating student: %w", err)
	}

	s.logger.Info("student created",
		slog.String("id", student.ID),
		slog.String("owner", owner),
	)

	return student, nil
}

// GetByID returns the student if it exists and is owned by owner;
// otherwise apperror.ErrNotFound.
func (s *StudentService) GetByID(ctx context.Context, owner, id string) (*model.Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "student ID is required")
	}
	return s.repo.GetStudentByID(ctx, owner, id)
}

// List returns exactly the students owned by owner.
func (s *StudentService) List(ctx context.Context, owner string) ([]model.Student, error) {
	students, err := s.repo.ListStudents(ctx, owner)
	if err != nil {
		s.logger.Error("failed to list students", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return students, nil
}

// Update applies a partial update, fetching first so the ownership check
// and the not-found response come from the same scoped lookup as GetByID.
func (s *StudentService) Update(ctx context.Context, owner, id string, patch StudentPatch) (*model.Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "student ID is required")
	}

	student, err := s.repo.GetStudentByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		firstName := strings.TrimSpace(*patch.FirstName)
		if err := validateRequiredName("firstName", firstName, MaxFirstNameLength); err != nil {
			return nil, err
		}
		student.FirstName = firstName
	}
	if patch.LastName != nil {
		lastName := strings.TrimSpace(*patch.LastName)
		if err := validateRequiredName("lastName", lastName, MaxLastNameLength); err != nil {
			return nil, err
		}
		student.LastName = lastName
	}
	if patch.BirthDate != nil {
		birthDate := strings.TrimSpace(*patch.BirthDate)
		if err := validateDate("birthDate", birthDate); err != nil {
			return nil, err
		}
		student.BirthDate = birthDate
	}

	if err := s.repo.UpdateStudent(ctx, owner, student); err != nil {
		s.logger.Error("failed to update student",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return student, nil
}

// Delete removes the student and, by cascade, its subjects and assignments.
func (s *StudentService) Delete(ctx context.Context, owner, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "student ID is required")
	}

	if err := s.repo.DeleteStudent(ctx, owner, id); err != nil {
		return err
	}

	s.logger.Info("student deleted",
		slog.String("id", id),
		slog.String("owner", owner),
	)
	return nil
}
