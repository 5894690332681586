package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/services"
)

type ClassHandler struct {
	classService *services.ClassService
}

func NewClassHandler(classService *services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())

	class, err := h.classService.Create(r.Context(), userID, role, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, class)
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())

	classes, err := h.classService.ListForUser(r.Context(), userID, role)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if classes == nil {
		classes = []*models.Class{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes})
}

func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	class, err := h.classService.Get(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())

	enrollment, err := h.classService.Enroll(r.Context(), userID, role, classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *ClassHandler) Roster(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	roster, err := h.classService.Roster(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if roster == nil {
		roster = []*models.RosterEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"roster": roster})
}

// parseIDParam reads a uuid URL parameter, writing the validation response
// itself when the value is malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid "+name+" parameter", r))
		return uuid.Nil, false
	}
	return id, true
}
