package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"edutrack/internal/apperror"
	"edutrack/internal/auth"
	"edutrack/internal/service"
)

// identityOrFail reads the verified identity from the request context.
// The auth middleware guarantees it is set on every /api route; the check
// here is the last line of defence so a misrouted handler can never reach a
// repository without an owner.
func identityOrFail(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return "", false
	}
	return id.String(), true
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StudentHandler manages CRUD operations for students.
type StudentHandler struct {
	service *service.StudentService
	logger  *slog.Logger
}

func NewStudentHandler(service *service.StudentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{service: service, logger: logger}
}

// studentRequest is the create/update payload. Pointer fields distinguish
// "absent" from "set to empty" so PATCH semantics work. There is no owner
// field to decode: a payload-supplied owner could only be ignored anyway.
type studentRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	BirthDate *string `json:"birthDate"`
}

// HandleList returns all students owned by the caller.
//
// HTTP: GET /api/students
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	students, err := h.service.List(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, students)
}

// HandleCreate saves a new student owned by the caller.
//
// HTTP: POST /api/students
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	student, err := h.service.Create(r.Context(), owner,
		strOrEmpty(req.FirstName),
		strOrEmpty(req.LastName),
		strOrEmpty(req.BirthDate),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

// HandleGetByID returns one student if owned by the caller.
//
// HTTP: GET /api/students/{id}
func (h *StudentHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	student, err := h.service.GetByID(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// HandleUpdate applies a partial update. Absent fields keep their values.
//
// HTTP: PUT /api/students/{id} and PATCH /api/students/{id}
func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityOrFail(w, r)
	if !ok {
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	student, err := h.service.Update(r.Context(), owner, r.PathValue("id"), service.StudentPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// HandleDelete removes a student and everything under it.
//
// HTTP: DELETE /api/students/{id}
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
