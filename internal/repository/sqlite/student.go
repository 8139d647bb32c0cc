package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"edutrack/internal/apperror"
	"edutrack/internal/model"
	"edutrack/internal/repository"
)

// Compile-time check that *DB satisfies the repository contracts.
var (
	_ repository.StudentRepository    = (*DB)(nil)
	_ repository.SubjectRepository    = (*DB)(nil)
	_ repository.AssignmentRepository = (*DB)(nil)
)

// CreateStudent inserts a new student. The ID and timestamps are generated
// here; UserID must already hold the verified identity of the caller.
func (db *DB) CreateStudent(ctx context.Context, student *model.Student) error {
	student.ID = xid.New().String()

	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO students (id, user_id, first_name, last_name, birth_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.UserID,
		student.FirstName,
		student.LastName,
		student.BirthDate,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating student: %w", err)
	}

	return nil
}

// GetStudentByID returns the student only if it is owned by owner. A
// student owned by someone else scans as zero rows, same as a missing one.
func (db *DB) GetStudentByID(ctx context.Context, owner, id string) (*model.Student, error) {
	var student model.Student

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, first_name, last_name, birth_date, created_at, updated_at
		 FROM students
		 WHERE id = ? AND user_id = ?`,
		id, owner,
	).Scan(
		&student.ID,
		&student.UserID,
		&student.FirstName,
		&student.LastName,
		&student.BirthDate,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("student", id)
		}
		return nil, fmt.Errorf("sqlite: getting student %s: %w", id, err)
	}

	return &student, nil
}

// ListStudents returns all students owned by owner, newest first. The id
// tiebreak keeps the order deterministic for rows created the same instant.
func (db *DB) ListStudents(ctx context.Context, owner string) ([]model.Student, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, first_name, last_name, birth_date, created_at, updated_at
		 FROM students
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing students: %w", err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.BirthDate,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating students: %w", err)
	}

	return students, nil
}

// UpdateStudent writes the mutable student fields. The owner predicate in
// the WHERE clause means an unowned id affects zero rows and reports
// NotFound, and user_id itself is never part of the SET list.
func (db *DB) UpdateStudent(ctx context.Context, owner string, student *model.Student) error {
	student.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE students
		 SET first_name = ?, last_name = ?, birth_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		student.FirstName,
		student.LastName,
		student.BirthDate,
		student.UpdatedAt,
		student.ID,
		owner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating student %s: %w", student.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("student", student.ID)
	}

	return nil
}

// DeleteStudent removes the student if owned by owner. Subjects and
// assignments go with it via the foreign-key cascades.
func (db *DB) DeleteStudent(ctx context.Context, owner, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM students WHERE id = ? AND user_id = ?`,
		id, owner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting student %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("student", id)
	}

	return nil
}
