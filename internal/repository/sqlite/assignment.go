package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"edutrack/internal/apperror"
	"edutrack/internal/model"
	"edutrack/internal/repository"
)

// CreateAssignment inserts a new assignment after verifying the referenced
// subject inside the same transaction: the subject must exist, its student
// must be owned by owner, and it must belong to the same student the
// assignment references. The ownership check comes before the cross-
// reference check, so a foreign subject reports forbidden rather than
// leaking which student it belongs to.
func (db *DB) CreateAssignment(ctx context.Context, owner string, assignment *model.Assignment) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var subjectStudent, studentOwner string
	err = tx.QueryRowContext(ctx,
		`SELECT sub.student_id, st.user_id
		 FROM subjects sub
		 JOIN students st ON st.id = sub.student_id
		 WHERE sub.id = ?`,
		assignment.SubjectID,
	).Scan(&subjectStudent, &studentOwner)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.ValidationFailed("subjectId", "referenced subject does not exist")
		}
		return fmt.Errorf("sqlite: checking subject %s: %w", assignment.SubjectID, err)
	}
	if studentOwner != owner {
		return apperror.Forbidden("you do not have permission to add an assignment for this subject")
	}
	if subjectStudent != assignment.StudentID {
		return apperror.ValidationFailed("studentId", "subject does not belong to this student")
	}

	assignment.ID = xid.New().String()

	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (id, student_id, subject_id, name, notes, date_completed, completed, grade, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		assignment.ID,
		assignment.StudentID,
		assignment.SubjectID,
		assignment.Name,
		assignment.Notes,
		assignment.DateCompleted,
		assignment.Completed,
		gradeValue(assignment.Grade),
		assignment.CreatedAt,
		assignment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing assignment create: %w", err)
	}
	return nil
}

// GetAssignmentByID returns the assignment only if its subject's student is
// owned by owner.
func (db *DB) GetAssignmentByID(ctx context.Context, owner, id string) (*model.Assignment, error) {
	var (
		a     model.Assignment
		grade sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT a.id, a.student_id, a.subject_id, a.name, a.notes, a.date_completed, a.completed, a.grade, a.created_at, a.updated_at
		 FROM assignments a
		 JOIN subjects sub ON sub.id = a.subject_id
		 JOIN students st ON st.id = sub.student_id
		 WHERE a.id = ? AND st.user_id = ?`,
		id, owner,
	).Scan(
		&a.ID,
		&a.StudentID,
		&a.SubjectID,
		&a.Name,
		&a.Notes,
		&a.DateCompleted,
		&a.Completed,
		&grade,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("assignment", id)
		}
		return nil, fmt.Errorf("sqlite: getting assignment %s: %w", id, err)
	}

	if err := scanGrade(grade, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAssignments returns all assignments whose subject's student is owned
// by owner, optionally restricted to one subject.
func (db *DB) ListAssignments(ctx context.Context, owner string, filter repository.AssignmentFilter) ([]model.Assignment, error) {
	query := `SELECT a.id, a.student_id, a.subject_id, a.name, a.notes, a.date_completed, a.completed, a.grade, a.created_at, a.updated_at
		 FROM assignments a
		 JOIN subjects sub ON sub.id = a.subject_id
		 JOIN students st ON st.id = sub.student_id
		 WHERE st.user_id = ?`
	args := []any{owner}

	if filter.SubjectID != "" {
		query += ` AND a.subject_id = ?`
		args = append(args, filter.SubjectID)
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing assignments: %w", err)
	}
	defer rows.Close()

	assignments := []model.Assignment{}
	for rows.Next() {
		var (
			a     model.Assignment
			grade sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.StudentID, &a.SubjectID, &a.Name, &a.Notes,
			&a.DateCompleted, &a.Completed, &grade,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning assignment row: %w", err)
		}
		if err := scanGrade(grade, &a); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating assignments: %w", err)
	}

	return assignments, nil
}

// UpdateAssignment writes the mutable assignment fields. student_id and
// subject_id stay out of the SET list; the subquery scopes the write to the
// owner's records.
func (db *DB) UpdateAssignment(ctx context.Context, owner string, assignment *model.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE assignments
		 SET name = ?, notes = ?, date_completed = ?, completed = ?, grade = ?, updated_at = ?
		 WHERE id = ? AND subject_id IN (
			SELECT sub.id FROM subjects sub
			JOIN students st ON st.id = sub.student_id
			WHERE st.user_id = ?
		 )`,
		assignment.Name,
		assignment.Notes,
		assignment.DateCompleted,
		assignment.Completed,
		gradeValue(assignment.Grade),
		assignment.UpdatedAt,
		assignment.ID,
		owner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating assignment %s: %w", assignment.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("assignment", assignment.ID)
	}

	return nil
}

// DeleteAssignment removes the assignment if its subject's student is owned
// by owner.
func (db *DB) DeleteAssignment(ctx context.Context, owner, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM assignments
		 WHERE id = ? AND subject_id IN (
			SELECT sub.id FROM subjects sub
			JOIN students st ON st.id = sub.student_id
			WHERE st.user_id = ?
		 )`,
		id, owner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting assignment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("assignment", id)
	}

	return nil
}

// gradeValue converts an optional grade to its stored form: NULL when
// absent, the canonical decimal string otherwise.
func gradeValue(g *decimal.Decimal) any {
	if g == nil {
		return nil
	}
	return g.String()
}

// scanGrade parses a stored grade back into the model.
func scanGrade(stored sql.NullString, a *model.Assignment) error {
	if !stored.Valid {
		a.Grade = nil
		return nil
	}
	g, err := decimal.NewFromString(stored.String)
	if err != nil {
		return fmt.Errorf("sqlite: parsing grade for assignment %s: %w", a.ID, err)
	}
	a.Grade = &g
	return nil
}
