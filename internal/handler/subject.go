package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"edutrack/internal/apperror"
	"edutrack/internal/service"
)

// SubjectHandler manages CRUD operations for subjects.
type SubjectHandler struct {
	service *service.SubjectService
	logger  *slog.Logger
}

func NewSubjectHandler(service *service.SubjectService, logger *slog.Logger) *SubjectHandler {
	return &SubjectHandler{service: service, logger: logger}
}

type subjectRequest struct {
	StudentID         *string `json:"studentId"`
	Name              *string `json:"name"`
	CourseDescription *string `json:"courseDescription"`
	Notes             *string `json:"notes"`
}

// HandleList returns the caller's subjects, optionally filtered by student.
//
// HTTP: GET /api/subjects?student={id}
func (h *SubjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	subjects, err := h.service.List(r.Context(), owner, r.URL.Query().Get("student"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subjects)
}

// HandleCreate saves a new subject under one of the caller's students.
// Referencing another user's student yields 403; a nonexistent one, 400.
//
// HTTP: POST /api/subjects
func (h *SubjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	subject, err := h.service.Create(r.Context(), owner,
		strOrEmpty(req.StudentID),
		strOrEmpty(req.Name),
		strOrEmpty(req.CourseDescription),
		strOrEmpty(req.Notes),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, subject)
}

// HandleGetByID returns one subject if owned by the caller.
//
// HTTP: GET /api/subjects/{id}
func (h *SubjectHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	subject, err := h.service.GetByID(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subject)
}

// HandleUpdate applies a partial update. The student reference is ignored
// even if supplied — subjects do not move between students.
//
// HTTP: PUT /api/subjects/{id} and PATCH /api/subjects/{id}
func (h *SubjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	subject, err := h.service.Update(r.Context(), owner, r.PathValue("id"), service.SubjectPatch{
		Name:              req.Name,
		CourseDescription: req.CourseDescription,
		Notes:             req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subject)
}

// HandleDelete removes a subject and its assignments.
//
// HTTP: DELETE /api/subjects/{id}
func (h *SubjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
