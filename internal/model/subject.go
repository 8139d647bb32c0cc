package model

import "time"

// Subject is a course of study belonging to one student. Its owner is the
// owner of that student; the relation is never stored directly.
//
// StudentID is immutable after creation. CourseDescription and Notes are
// optional — an empty string means "not set" (simpler than nullable
// pointers and safe to render).
type Subject struct {
	ID                string    `json:"id"                db:"id"`
	StudentID         string    `json:"studentId"         db:"student_id"`
	Name              string    `json:"name"              db:"name"`
	CourseDescription string    `json:"courseDescription" db:"course_description"`
	Notes             string    `json:"notes"             db:"notes"`
	CreatedAt         time.Time `json:"createdAt"         db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt"         db:"updated_at"`
}
