package handlers

import (
	"net/http"

	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/services"
)

type SessionHandler struct {
	sessionService    *services.SessionService
	attendanceService *services.AttendanceService
}

func NewSessionHandler(sessionService *services.SessionService, attendanceService *services.AttendanceService) *SessionHandler {
	return &SessionHandler{
		sessionService:    sessionService,
		attendanceService: attendanceService,
	}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.Start(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.End(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	status, err := h.sessionService.Status(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *SessionHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	attendance, already, err := h.attendanceService.CheckIn(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	message := "Checked in"
	if already {
		status = http.StatusOK
		message = "Already checked in"
	}
	writeJSON(w, status, map[string]any{
		"message":    message,
		"attendance": attendance,
	})
}
