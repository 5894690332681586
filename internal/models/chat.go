package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage belongs to a class and to the session that was active when it
// was sent. Role is the sender's effective role at send time (professor,
// student, or ta). A reply references its parent by id only.
type ChatMessage struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	SenderName  string     `json:"sender_name"`
	ClassID     uuid.UUID  `json:"class_id"`
	SessionID   uuid.UUID  `json:"session_id"`
	Text        string     `json:"text"`
	Role        string     `json:"role"`
	SentAt      time.Time  `json:"sent_at"`
	RepliedToID *uuid.UUID `json:"replied_to_id,omitempty"`
}

// Chat event types broadcast to a session room.
const (
	ChatEventNewMessage     = "new_message"
	ChatEventMessageEdited  = "message_edited"
	ChatEventMessageDeleted = "message_deleted"
	ChatEventError          = "error"
)

type ChatEvent struct {
	Type    string       `json:"type"`
	Message *ChatMessage `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type SendMessageRequest struct {
	Text        string     `json:"text"`
	RepliedToID *uuid.UUID `json:"replied_to_id,omitempty"`
}

type EditMessageRequest struct {
	Text string `json:"text"`
}

// ChatHistory is the fetch response: all messages of the currently active
// session in ascending timestamp order, plus whether the session is still
// live. Once the session ends the history is frozen and no longer served.
type ChatHistory struct {
	Messages      []*ChatMessage `json:"messages"`
	SessionActive bool           `json:"session_active"`
}
