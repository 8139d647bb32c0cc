// Package repository defines the storage contracts for the ownership-scoped
// entity stores.
//
// Every read and write takes the owning user's identity as an explicit
// parameter — never read from ambient state — and implementations must
// restrict results to records transitively owned by that identity. A lookup
// of a record owned by someone else is indistinguishable from a lookup of a
// record that does not exist: both return apperror.ErrNotFound.
package repository

import (
	"context"

	"edutrack/internal/model"
)

// SubjectFilter optionally restricts a subject listing to one student.
type SubjectFilter struct {
	StudentID string
}

// AssignmentFilter optionally restricts an assignment listing to one subject.
type AssignmentFilter struct {
	SubjectID string
}

type StudentRepository interface {
	// CreateStudent persists the student. The caller sets UserID to the
	// verified identity before calling; the repository trusts it.
	CreateStudent(ctx context.Context, student *model.Student) error
	GetStudentByID(ctx context.Context, owner, id string) (*model.Student, error)
	// ListStudents returns exactly the set of students owned by owner.
	ListStudents(ctx context.Context, owner string) ([]model.Student, error)
	// UpdateStudent writes the mutable fields. UserID is never touched.
	UpdateStudent(ctx context.Context, owner string, student *model.Student) error
	// DeleteStudent removes the student and, by cascade, its subjects and
	// assignments.
	DeleteStudent(ctx context.Context, owner, id string) error
}

type SubjectRepository interface {
	// CreateSubject checks that the referenced student exists and is owned
	// by owner, then inserts — both inside one transaction so the parent's
	// ownership cannot change between check and write. A missing student
	// is a validation error; a foreign one is apperror.ErrForbidden.
	CreateSubject(ctx context.Context, owner string, subject *model.Subject) error
	GetSubjectByID(ctx context.Context, owner, id string) (*model.Subject, error)
	ListSubjects(ctx context.Context, owner string, filter SubjectFilter) ([]model.Subject, error)
	// UpdateSubject writes the mutable fields. StudentID is never touched.
	UpdateSubject(ctx context.Context, owner string, subject *model.Subject) error
	// DeleteSubject removes the subject and, by cascade, its assignments.
	DeleteSubject(ctx context.Context, owner, id string) error
}

type AssignmentRepository interface {
	// CreateAssignment checks, inside one transaction, that the referenced
	// subject exists (validation error if not), is owned by owner
	// (apperror.ErrForbidden if not), and belongs to the same student the
	// assignment references (validation error if not), then inserts.
	CreateAssignment(ctx context.Context, owner string, assignment *model.Assignment) error
	GetAssignmentByID(ctx context.Context, owner, id string) (*model.Assignment, error)
	ListAssignments(ctx context.Context, owner string, filter AssignmentFilter) ([]model.Assignment, error)
	// UpdateAssignment writes the mutable fields. StudentID and SubjectID
	// are never touched.
	UpdateAssignment(ctx context.Context, owner string, assignment *model.Assignment) error
	DeleteAssignment(ctx context.Context, owner, id string) error
}
