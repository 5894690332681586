package handlers

import (
	"encoding/json"
	"net/http"

	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	history, err := h.chatService.History(r.Context(), middleware.GetUserID(r.Context()), classID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	message, err := h.chatService.Send(r.Context(), middleware.GetUserID(r.Context()), classID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *ChatHandler) Edit(w http.ResponseWriter, r *http.Request) {
	messageID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req models.EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	message, err := h.chatService.Edit(r.Context(), middleware.GetUserID(r.Context()), messageID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, message)
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	messageID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.chatService.Delete(r.Context(), middleware.GetUserID(r.Context()), messageID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted"})
}
