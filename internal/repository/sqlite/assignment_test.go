package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"edutrack/internal/apperror"
	"edutrack/internal/model"
	"edutrack/internal/repository"
)

func TestCreateAssignment(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")

	grade := decimal.RequireFromString("92.50")
	assignment := &model.Assignment{
		StudentID:     student.ID,
		SubjectID:     subject.ID,
		Name:          "HW1",
		Notes:         "chapter 3",
		DateCompleted: "2026-02-10",
		Completed:     true,
		Grade:         &grade,
	}

	if err := db.CreateAssignment(context.Background(), ownerA, assignment); err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	if assignment.ID == "" {
		t.Error("CreateAssignment() did not set assignment.ID")
	}

	found, err := db.GetAssignmentByID(context.Background(), ownerA, assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignmentByID() error = %v", err)
	}
	if found.Name != "HW1" || !found.Completed || found.DateCompleted != "2026-02-10" {
		t.Errorf("persisted assignment = %+v", found)
	}
	if found.Grade == nil || !found.Grade.Equal(grade) {
		t.Errorf("Grade = %v, want %v", found.Grade, grade)
	}
}

func TestCreateAssignment_NoGrade(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")

	assignment := createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	found, err := db.GetAssignmentByID(context.Background(), ownerA, assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignmentByID() error = %v", err)
	}
	if found.Grade != nil {
		t.Errorf("Grade = %v, want nil for ungraded assignment", found.Grade)
	}
	if found.Completed {
		t.Error("Completed should default to false")
	}
}

func TestCreateAssignment_ForeignSubjectForbidden(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")

	assignment := &model.Assignment{
		StudentID: student.ID,
		SubjectID: subject.ID,
		Name:      "HW1",
	}
	err := db.CreateAssignment(context.Background(), ownerB, assignment)

	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("CreateAssignment() for foreign subject error = %v, want ErrForbidden", err)
	}
}

func TestCreateAssignment_MissingSubject(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")

	assignment := &model.Assignment{
		StudentID: student.ID,
		SubjectID: "does-not-exist",
		Name:      "HW1",
	}
	err := db.CreateAssignment(context.Background(), ownerA, assignment)

	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateAssignment() with missing subject error = %v, want ErrValidation", err)
	}
}

// The subject must belong to the same student the assignment names —
// a mismatch is a validation error even though both records are owned by
// the caller.
func TestCreateAssignment_SubjectStudentMismatch(t *testing.T) {
	db := newTestDB(t)
	alice := createTestStudent(t, db, ownerA, "Alice")
	anya := createTestStudent(t, db, ownerA, "Anya")
	aliceMath := createTestSubject(t, db, ownerA, alice.ID, "Math")

	assignment := &model.Assignment{
		StudentID: anya.ID,
		SubjectID: aliceMath.ID,
		Name:      "HW1",
	}
	err := db.CreateAssignment(context.Background(), ownerA, assignment)

	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateAssignment() with mismatched student error = %v, want ErrValidation", err)
	}
	if errors.Is(err, apperror.ErrForbidden) {
		t.Error("a mismatch within the caller's own records is not a permission problem")
	}
}

func TestGetAssignmentByID_OtherOwnerIndistinguishable(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")
	assignment := createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	_, err := db.GetAssignmentByID(context.Background(), ownerB, assignment.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAssignmentByID() as other owner error = %v, want ErrNotFound", err)
	}
}

func TestListAssignments_FilterBySubject(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	math := createTestSubject(t, db, ownerA, student.ID, "Math")
	history := createTestSubject(t, db, ownerA, student.ID, "History")

	hw1 := createTestAssignment(t, db, ownerA, student.ID, math.ID, "HW1")
	createTestAssignment(t, db, ownerA, student.ID, history.ID, "Essay")

	all, err := db.ListAssignments(context.Background(), ownerA, repository.AssignmentFilter{})
	if err != nil {
		t.Fatalf("ListAssignments() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAssignments() returned %d assignments, want 2", len(all))
	}

	filtered, err := db.ListAssignments(context.Background(), ownerA, repository.AssignmentFilter{SubjectID: math.ID})
	if err != nil {
		t.Fatalf("ListAssignments() with filter error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != hw1.ID {
		t.Errorf("filtered ListAssignments() = %v, want just %s", filtered, hw1.ID)
	}
}

func TestListAssignments_OnlyOwned(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")
	createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	assignments, err := db.ListAssignments(context.Background(), ownerB, repository.AssignmentFilter{})
	if err != nil {
		t.Fatalf("ListAssignments() error = %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("ListAssignments() for other owner returned %d assignments, want 0", len(assignments))
	}
}

func TestUpdateAssignment(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")
	assignment := createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	grade := decimal.RequireFromString("88.25")
	assignment.Completed = true
	assignment.DateCompleted = "2026-03-01"
	assignment.Grade = &grade

	if err := db.UpdateAssignment(context.Background(), ownerA, assignment); err != nil {
		t.Fatalf("UpdateAssignment() error = %v", err)
	}

	found, err := db.GetAssignmentByID(context.Background(), ownerA, assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignmentByID() error = %v", err)
	}
	if !found.Completed || found.DateCompleted != "2026-03-01" {
		t.Errorf("update not persisted: %+v", found)
	}
	if found.Grade == nil || !found.Grade.Equal(grade) {
		t.Errorf("Grade = %v, want %v", found.Grade, grade)
	}
	if found.SubjectID != subject.ID || found.StudentID != student.ID {
		t.Error("references changed on update")
	}
}

func TestUpdateAssignment_OtherOwnerNotFound(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")
	assignment := createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	assignment.Name = "Hijacked"
	err := db.UpdateAssignment(context.Background(), ownerB, assignment)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateAssignment() as other owner error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAssignment(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")
	assignment := createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	if err := db.DeleteAssignment(context.Background(), ownerA, assignment.ID); err != nil {
		t.Fatalf("DeleteAssignment() error = %v", err)
	}
	if _, err := db.GetAssignmentByID(context.Background(), ownerA, assignment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("assignment still readable after delete: err = %v", err)
	}
}

func TestDeleteAssignment_OtherOwnerNotFound(t *testing.T) {
	db := newTestDB(t)
	student := createTestStudent(t, db, ownerA, "Alice")
	subject := createTestSubject(t, db, ownerA, student.ID, "Math")
	assignment := createTestAssignment(t, db, ownerA, student.ID, subject.ID, "HW1")

	err := db.DeleteAssignment(context.Background(), ownerB, assignment.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteAssignment() as other owner error = %v, want ErrNotFound", err)
	}
}
