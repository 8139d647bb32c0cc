// Package model defines the data structures shared across the application.
package model

import "time"

// Student is the root of the ownership chain: every subject and assignment
// belongs to exactly one student, and every student belongs to exactly one
// user. UserID is the verified subject claim of the caller's bearer token —
// an opaque identifier from the external identity provider, referenced by
// value rather than stored as an entity of its own.
//
// UserID is set once at creation and never updated.
type Student struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName"  db:"last_name"`
	BirthDate string    `json:"birthDate" db:"birth_date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
