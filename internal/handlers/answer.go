package handlers

import (
	"encoding/json"
	"net/http"

	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/services"
)

type AnswerHandler struct {
	answerService *services.AnswerService
}

func NewAnswerHandler(answerService *services.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

func (h *AnswerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	answer, err := h.answerService.Submit(r.Context(), middleware.GetUserID(r.Context()), questionID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, answer)
}

func (h *AnswerHandler) List(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	answers, err := h.answerService.ListForQuestion(r.Context(), middleware.GetUserID(r.Context()), questionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if answers == nil {
		answers = []*models.Answer{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"answers": answers})
}

func (h *AnswerHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	feedback, err := h.answerService.Feedback(r.Context(), middleware.GetUserID(r.Context()), questionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, feedback)
}
