package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assignment is a piece of work within a subject. It references both its
// subject and that subject's student; the two must agree
// (subject.StudentID == assignment.StudentID), which the service layer
// enforces as a validation error rather than silently correcting.
//
// StudentID and SubjectID are immutable after creation.
//
// Grade is a pointer because "no grade yet" and "graded zero" are different
// things. decimal.Decimal keeps the bounded precision of a gradebook value
// (up to 999.99, two decimal places) without float rounding surprises.
type Assignment struct {
	ID            string           `json:"id"                      db:"id"`
	StudentID     string           `json:"studentId"               db:"student_id"`
	SubjectID     string           `json:"subjectId"               db:"subject_id"`
	Name          string           `json:"name"                    db:"name"`
	Notes         string           `json:"notes"                   db:"notes"`
	DateCompleted string           `json:"dateCompleted,omitempty" db:"date_completed"` // YYYY-MM-DD, empty if not completed
	Completed     bool             `json:"completed"               db:"completed"`
	Grade         *decimal.Decimal `json:"grade,omitempty"         db:"grade"`
	CreatedAt     time.Time        `json:"createdAt"               db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt"               db:"updated_at"`
}
