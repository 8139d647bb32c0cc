// Package sqlite implements the repository interfaces on SQLite through
// database/sql. modernc.org/sqlite is a pure-Go driver, so the binary needs
// no C toolchain and tests can run against ":memory:".
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces for students, subjects, and assignments.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// PRAGMAs apply per connection, and ":memory:" gives every connection
	// its own database. A single connection keeps both consistent; SQLite
	// serializes writes anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. The delete cascades
	// (student → subjects → assignments) depend on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			birth_date TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_students_user_id ON students(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating students table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS subjects (
			id                 TEXT PRIMARY KEY,
			student_id         TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			name               TEXT NOT NULL,
			course_description TEXT NOT NULL DEFAULT '',
			notes              TEXT NOT NULL DEFAULT '',
			created_at         DATETIME NOT NULL,
			updated_at         DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_subjects_student_id ON subjects(student_id);
	`)
	if err != nil {
		return fmt.Errorf("creating subjects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS assignments (
			id             TEXT PRIMARY KEY,
			student_id     TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			subject_id     TEXT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
			name           TEXT NOT NULL,
			notes          TEXT NOT NULL DEFAULT '',
			date_completed TEXT NOT NULL DEFAULT '',
			completed      INTEGER NOT NULL DEFAULT 0,
			grade          TEXT,
			created_at     DATETIME NOT NULL,
			updated_at     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_assignments_student_id ON assignments(student_id);
		CREATE INDEX IF NOT EXISTS idx_assignments_subject_id ON assignments(subject_id);
	`)
	if err != nil {
		return fmt.Errorf("creating assignments table: %w", err)
	}

	return nil
}
