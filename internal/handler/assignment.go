package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"edutrack/internal/apperror"
	"edutrack/internal/service"
)

// AssignmentHandler manages CRUD operations for assignments.
type AssignmentHandler struct {
	service *service.AssignmentService
	logger  *slog.Logger
}

func NewAssignmentHandler(service *service.AssignmentService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{service: service, logger: logger}
}

type assignmentRequest struct {
	StudentID     *string          `json:"studentId"`
	SubjectID     *string          `json:"subjectId"`
	Name          *string          `json:"name"`
	Notes         *string          `json:"notes"`
	DateCompleted *string          `json:"dateCompleted"`
	Completed     *bool            `json:"completed"`
	Grade         *decimal.Decimal `json:"grade"`
}

// HandleList returns the caller's assignments, optionally filtered by
// subject.
//
// HTTP: GET /api/assignments?subject={id}
func (h *AssignmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.List(r.Context(), owner, r.URL.Query().Get("subject"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

// HandleCreate saves a new assignment. Referencing another user's subject
// yields 403; a subject belonging to a different student than the payload
// names yields 400.
//
// HTTP: POST /api/assignments
func (h *AssignmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}

	assignment, err := h.service.Create(r.Context(), owner, service.AssignmentInput{
		StudentID:     strOrEmpty(req.StudentID),
		SubjectID:     strOrEmpty(req.SubjectID),
		Name:          strOrEmpty(req.Name),
		Notes:         strOrEmpty(req.Notes),
		DateCompleted: strOrEmpty(req.DateCompleted),
		Completed:     completed,
		Grade:         req.Grade,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assignment)
}

// HandleGetByID returns one assignment if owned by the caller.
//
// HTTP: GET /api/assignments/{id}
func (h *AssignmentHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	assignment, err := h.service.GetByID(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// HandleUpdate applies a partial update. Student and subject references are
// ignored even if supplied — assignments do not move.
//
// HTTP: PUT /api/assignments/{id} and PATCH /api/assignments/{id}
func (h *AssignmentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	assignment, err := h.service.Update(r.Context(), owner, r.PathValue("id"), service.AssignmentPatch{
		Name:          req.Name,
		Notes:         req.Notes,
		DateCompleted: req.DateCompleted,
		Completed:     req.Completed,
		Grade:         req.Grade,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// HandleDelete removes an assignment.
//
// HTTP: DELETE /api/assignments/{id}
func (h *AssignmentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
