package sqlite

import (
	"context"
	"errors"
	"testing"

	"edutrack/internal/apperror"
	"edutrack/internal/model"
)

const (
	ownerA = "user_aaa"
	ownerB = "user_bbb"
)

// newTestDB opens an in-memory database scoped to one test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestStudent(t *testing.T, db *DB, owner, firstName string) *model.Student {
	t.Helper()
	student := &model.Student{
		UserID:    owner,
		FirstName: firstName,
		LastName:  "Tester",
		BirthDate: "2010-01-01",
	}
	if err := db.CreateStudent(context.Background(), student); err != nil {
		t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

func createTestSubject(t *testing.T, db *DB, owner, studentID, name string) *model.Subject {
	t.Helper()
	subject := &model.Subject{
		StudentID: studentID,
		Name:      name,
	}
	if err := db.CreateSubject(context.Background(), owner, subject); err != nil {
		t.Fatalf("failed to create test subject: %v", err)
	}
	return subject
}

func createTestAssignment(t *testing.T, db *DB, owner, studentID, subjectID, name string) *model.Assignment {
	t.Helper()
	assignment := &model.Assignment{
		StudentID: studentID,
		SubjectID: subjectID,
		Name:      name,
	}
	if err := db.CreateAssignment(context.Background(), owner, assignment); err != nil {
		t.Fatalf("failed to create test assignment: %v", err)
	}
	return assignment
}

func TestCreateStudent(t *testing.T) {
	db := newTestDB(t)

	student := &model.Student{
		UserID:    ownerA,
		FirstName: "Alice",
		LastName:  "Nguyen",
		BirthDate: "2010-01-01",
	}

	if err := db.CreateStudent(context.Background(), student); err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}

	if student.ID == "" {
		t.Error("CreateStudent() did not set student.ID")
	}
	if student.CreatedAt.IsZero() {
		t.Error("CreateStudent() did not set student.CreatedAt")
	}
	if student.UpdatedAt.IsZero() {
		t.Error("CreateStudent() did not set student.UpdatedAt")
	}

	found, err := db.GetStudentByID(context.Background(), ownerA, student.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() error = %v", err)
	}
	if found.FirstName != "Alice" || found.LastName != "Nguyen" {
		t.Errorf("persisted name = %q %q, want Alice Nguyen", found.FirstName, found.LastName)
	}
	if found.UserID != ownerA {
		t.Errorf("UserID = %q, want %q", found.UserID, ownerA)
	}
	if found.BirthDate != "2010-01-01" {
		t.Errorf("BirthDate = %q, want %q", found.BirthDate, "2010-01-01")
	}
}

func TestGetStudentByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetStudentByID(context.Background(), ownerA, "does-not-exist")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetStudentByID() error = %v, want ErrNotFound", err)
	}
}

// A student owned by another user must look exactly like a missing one.
func TestGetStudentByID_OtherOwnerIndistinguishable(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")

	_, err := db.GetStudentByID(context.Background(), ownerB, student.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetStudentByID() as other owner error = %v, want ErrNotFound", err)
	}
}

func TestListStudents_ExactlyOwnedSet(t *testing.T) {
	db := newTestDB(t)

	a1 := createTestStudent(t, db, ownerA, "Alice")
	a2 := createTestStudent(t, db, ownerA, "Anya")
	createTestStudent(t, db, ownerB, "Bruno")

	students, err := db.ListStudents(context.Background(), ownerA)
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}

	if len(students) != 2 {
		t.Fatalf("ListStudents() returned %d students, want 2", len(students))
	}
	got := map[string]bool{}
	for _, s := range students {
		got[s.ID] = true
		if s.UserID != ownerA {
			t.Errorf("listed student %s has owner %q, want %q", s.ID, s.UserID, ownerA)
		}
	}
	if !got[a1.ID] || !got[a2.ID] {
		t.Errorf("ListStudents() missing expected students: got %v", got)
	}
}

func TestListStudents_EmptyForNewOwner(t *testing.T) {
	db := newTestDB(t)
	createTestStudent(t, db, ownerA, "Alice")

	students, err := db.ListStudents(context.Background(), ownerB)
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}
	if len(students) != 0 {
		t.Errorf("ListStudents() for other owner returned %d students, want 0", len(students))
	}
}

func TestUpdateStudent(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")

	student.FirstName = "Alicia"
	if err := db.UpdateStudent(context.Background(), ownerA, student); err != nil {
		t.Fatalf("UpdateStudent() error = %v", err)
	}

	found, err := db.GetStudentByID(context.Background(), ownerA, student.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() error = %v", err)
	}
	if found.FirstName != "Alicia" {
		t.Errorf("FirstName = %q, want %q", found.FirstName, "Alicia")
	}
	if found.UserID != ownerA {
		t.Errorf("UserID changed to %q on update", found.UserID)
	}
}

func TestUpdateStudent_OtherOwnerNotFound(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")

	student.FirstName = "Hijacked"
	err := db.UpdateStudent(context.Background(), ownerB, student)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateStudent() as other owner error = %v, want ErrNotFound", err)
	}

	// The record is untouched.
	found, err := db.GetStudentByID(context.Background(), ownerA, student.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() error = %v", err)
	}
	if found.FirstName != "Alice" {
		t.Errorf("FirstName = %q after failed foreign update, want %q", found.FirstName, "Alice")
	}
}

func TestDeleteStudent_OtherOwnerNotFound(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")

	err := db.DeleteStudent(context.Background(), ownerB, student.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteStudent() as other owner error = %v, want ErrNotFound", err)
	}

	if _, err := db.GetStudentByID(context.Background(), ownerA, student.ID); err != nil {
		t.Errorf("student should still exist after failed foreign delete: %v", err)
	}
}

// Deleting a student removes its subjects and assignments with it.
func TestDeleteStudent_Cascades(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")
	assignment := createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	if err := db.DeleteStudent(context.Background(), ownerA, student.ID); err != nil {
		t.Fatalf("DeleteStudent() error = %v", err)
	}

	if _, err := db.GetSubjectByID(context.Background(), ownerA, subject.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("subject survived student delete: err = %v", err)
	}
	if _, err := db.GetAssignmentByID(context.Background(), ownerA, assignment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("assignment survived student delete: err = %v", err)
	}

	// The rows are really gone, not just filtered out by the owner joins.
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM subjects`).Scan(&count); err != nil {
		t.Fatalf("counting subjects: %v", err)
	}
	if count != 0 {
		t.Errorf("subjects table has %d rows after cascade, want 0", count)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM assignments`).Scan(&count); err != nil {
		t.Fatalf("counting assignments: %v", err)
	}
	if count != 0 {
		t.Errorf("assignments table has %d rows after cascade, want 0", count)
	}
}
