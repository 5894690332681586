package handlers

import (
	"encoding/json"
	"net/http"

	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/services"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) Add(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req models.AddQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	question, err := h.questionService.Add(r.Context(), middleware.GetUserID(r.Context()), classID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	questions, err := h.questionService.List(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if questions == nil {
		questions = []*models.QuestionOverview{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *QuestionHandler) Active(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	question, err := h.questionService.Active(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) DisplayedQuestion(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	question, err := h.questionService.Displayed(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	questionID, ok := parseIDParam(w, r, "questionID")
	if !ok {
		return
	}

	var req models.AskQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	question, err := h.questionService.Ask(r.Context(), middleware.GetUserID(r.Context()), classID, questionID, req.Active)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) Display(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	questionID, ok := parseIDParam(w, r, "questionID")
	if !ok {
		return
	}

	var req models.DisplayQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	question, err := h.questionService.Display(r.Context(), middleware.GetUserID(r.Context()), classID, questionID, req.Displayed)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req models.AddQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	question, err := h.questionService.Update(r.Context(), middleware.GetUserID(r.Context()), questionID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(r.Context(), middleware.GetUserID(r.Context()), questionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted"})
}
