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

// CreateSubject inserts a new subject after verifying the referenced
// student inside the same transaction. The transaction is what guarantees
// the student's ownership cannot change between the check and the insert.
func (db *DB) CreateSubject(ctx context.Context, owner string, subject *model.Subject) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var studentOwner string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM students WHERE id = ?`,
		subject.StudentID,
	).Scan(&studentOwner)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.ValidationFailed("studentId", "referenced student does not exist")
		}
		return fmt.Errorf("sqlite: checking student %s: %w", subject.StudentID, err)
	}
	if studentOwner != owner {
		return apperror.Forbidden("you do not have permission to add a subject for this student")
	}

	subject.ID = xid.New().String()

	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO subjects (id, student_id, name, course_description, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		subject.ID,
		subject.StudentID,
		subject.Name,
		subject.CourseDescription,
		subject.Notes,
		subject.CreatedAt,
		subject.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating subject: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing subject create: %w", err)
	}
	return nil
}

// GetSubjectByID returns the subject only if its student is owned by owner.
func (db *DB) GetSubjectByID(ctx context.Context, owner, id string) (*model.Subject, error) {
	var subject model.Subject

	err := db.conn.QueryRowContext(ctx,
		`SELECT sub.id, sub.student_id, sub.name, sub.course_description, sub.notes, sub.created_at, sub.updated_at
		 FROM subjects sub
		 JOIN students st ON st.id = sub.student_id
		 WHERE sub.id = ? AND st.user_id = ?`,
		id, owner,
	).Scan(
		&subject.ID,
		&subject.StudentID,
		&subject.Name,
		&subject.CourseDescription,
		&subject.Notes,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("subject", id)
		}
		return nil, fmt.Errorf("sqlite: getting subject %s: %w", id, err)
	}

	return &subject, nil
}

// ListSubjects returns all subjects whose student is owned by owner,
// optionally restricted to one student. Filtering by a student the owner
// does not own simply yields an empty list — the join already excluded it.
func (db *DB) ListSubjects(ctx context.Context, owner string, filter repository.SubjectFilter) ([]model.Subject, error) {
	query := `SELECT sub.id, sub.student_id, sub.name, sub.course_description, sub.notes, sub.created_at, sub.updated_at
		 FROM subjects sub
		 JOIN students st ON st.id = sub.student_id
		 WHERE st.user_id = ?`
	args := []any{owner}

	if filter.StudentID != "" {
		query += ` AND sub.student_id = ?`
		args = append(args, filter.StudentID)
	}
	query += ` ORDER BY sub.created_at DESC, sub.id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(
			&s.ID, &s.StudentID, &s.Name, &s.CourseDescription, &s.Notes,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subjects: %w", err)
	}

	return subjects, nil
}

// UpdateSubject writes the mutable subject fields. student_id stays out of
// the SET list; the subquery scopes the write to the owner's records.
func (db *DB) UpdateSubject(ctx context.Context, owner string, subject *model.Subject) error {
	subject.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE subjects
		 SET name = ?, course_description = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND student_id IN (SELECT id FROM students WHERE user_id = ?)`,
		subject.Name,
		subject.CourseDescription,
		subject.Notes,
		subject.UpdatedAt,
		subject.ID,
		owner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating subject %s: %w", subject.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("subject", subject.ID)
	}

	return nil
}

// DeleteSubject removes the subject if its student is owned by owner. Its
// assignments go with it via the foreign-key cascade.
func (db *DB) DeleteSubject(ctx context.Context, owner, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM subjects
		 WHERE id = ? AND student_id IN (SELECT id FROM students WHERE user_id = ?)`,
		id, owner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting subject %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("subject", id)
	}

	return nil
}
