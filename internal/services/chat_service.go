package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
)

// ChatService implements the session-scoped class chat. Messages belong to
// the session that was active when they were sent; once the session ends the
// room goes quiet and its history is no longer served. Events fan out to the
// websocket hubs through redis pub/sub.
type ChatService struct {
	classes     *repository.ClassRepo
	enrollments *repository.EnrollmentRepo
	sessions    *repository.SessionRepo
	messages    *repository.ChatRepo
	pubsub      *redis.Client
}

func NewChatService(
	classes *repository.ClassRepo,
	enrollments *repository.EnrollmentRepo,
	sessions *repository.SessionRepo,
	messages *repository.ChatRepo,
	pubsubClient *redis.Client,
) *ChatService {
	return &ChatService{
		classes:     classes,
		enrollments: enrollments,
		sessions:    sessions,
		messages:    messages,
		pubsub:      pubsubClient,
	}
}

// ChatChannel is the pub/sub channel carrying a session's chat events.
func ChatChannel(sessionID uuid.UUID) string {
	return fmt.Sprintf("chat:session:%s", sessionID.String())
}

// Send posts a message to the class's active session. The sender's role is
// stamped at send time: professor for the instructor, ta for students with
// the TA flag, student otherwise. The TA label is informational only.
func (s *ChatService) Send(ctx context.Context, userID, classID uuid.UUID, req models.SendMessageRequest) (*models.ChatMessage, error) {
	text := strings.TrimSpace(req.Text)
	if fields := validateMessageText(text); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	class, err := requireParticipant(ctx, s.classes, s.enrollments, classID, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.activeSession(ctx, classID)
	if err != nil {
		return nil, err
	}

	isTA := false
	if class.InstructorID != userID {
		enrollment, err := s.enrollments.GetByStudentAndClass(ctx, userID, classID)
		if err != nil {
			return nil, err
		}
		isTA = enrollment.IsTA
	}
	role := messageRole(class.InstructorID == userID, isTA)

	if req.RepliedToID != nil {
		parent, err := s.messages.GetByID(ctx, *req.RepliedToID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Message: "Replied-to message not found"}
			}
			return nil, err
		}
		if parent.SessionID != session.ID {
			return nil, &ValidationError{Fields: map[string]string{"replied_to_id": "Reply must reference a message in the current session"}}
		}
	}

	message := &models.ChatMessage{
		SenderID:    userID,
		ClassID:     classID,
		SessionID:   session.ID,
		Text:        text,
		Role:        role,
		RepliedToID: req.RepliedToID,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	// Sender name for the broadcast payload comes from the joined read.
	stored, err := s.messages.GetByID(ctx, message.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, session.ID, models.ChatEvent{Type: models.ChatEventNewMessage, Message: stored})
	return stored, nil
}

// History returns the active session's messages in send order. Once the
// session ends there is no history to serve.
func (s *ChatService) History(ctx context.Context, userID, classID uuid.UUID) (*models.ChatHistory, error) {
	if _, err := requireParticipant(ctx, s.classes, s.enrollments, classID, userID); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.ChatHistory{Messages: []*models.ChatMessage{}, SessionActive: false}, nil
		}
		return nil, err
	}

	messages, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	return &models.ChatHistory{Messages: messages, SessionActive: true}, nil
}

// Edit rewrites the text of the caller's own message while its session is
// still active.
func (s *ChatService) Edit(ctx context.Context, userID, messageID uuid.UUID, req models.EditMessageRequest) (*models.ChatMessage, error) {
	text := strings.TrimSpace(req.Text)
	if fields := validateMessageText(text); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	message, session, err := s.loadLiveMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != userID {
		return nil, &ForbiddenError{Message: "You may only edit your own messages"}
	}

	if err := s.messages.UpdateText(ctx, messageID, text); err != nil {
		return nil, err
	}
	message.Text = text

	s.publish(ctx, session.ID, models.ChatEvent{Type: models.ChatEventMessageEdited, Message: message})
	return message, nil
}

// Delete removes one of the caller's own messages while its session is still
// active.
func (s *ChatService) Delete(ctx context.Context, userID, messageID uuid.UUID) error {
	message, session, err := s.loadLiveMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != userID {
		return &ForbiddenError{Message: "You may only delete your own messages"}
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}

	s.publish(ctx, session.ID, models.ChatEvent{Type: models.ChatEventMessageDeleted, Message: message})
	return nil
}

func (s *ChatService) activeSession(ctx context.Context, classID uuid.UUID) (*models.ClassSession, error) {
	session, err := s.sessions.GetActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ConflictError{Message: "Chat is only available during an active session"}
		}
		return nil, err
	}
	return session, nil
}

// loadLiveMessage fetches a message and verifies its session is still the
// active one. Messages of ended sessions are frozen.
func (s *ChatService) loadLiveMessage(ctx context.Context, messageID uuid.UUID) (*models.ChatMessage, *models.ClassSession, error) {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &NotFoundError{Message: "Message not found"}
		}
		return nil, nil, err
	}

	session, err := s.sessions.GetByID(ctx, message.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if !session.IsActive {
		return nil, nil, &ConflictError{Message: "The session this message belongs to has ended"}
	}
	return message, session, nil
}

func validateMessageText(text string) map[string]string {
	fields := make(map[string]string)
	if text == "" {
		fields["text"] = "Message text is required"
	}
	if utf8.RuneCountInString(text) > 2000 {
		fields["text"] = "Message must be at most 2000 characters"
	}
	return fields
}

// messageRole is the role label stamped on a message at send time. The TA
// label is informational only and never grants extra permissions.
func messageRole(isInstructor, isTA bool) string {
	switch {
	case isInstructor:
		return models.RoleProfessor
	case isTA:
		return models.RoleTA
	default:
		return models.RoleStudent
	}
}

func (s *ChatService) publish(ctx context.Context, sessionID uuid.UUID, event models.ChatEvent) {
	if s.pubsub == nil {
		return
	}
	data, _ := json.Marshal(event)
	if err := s.pubsub.Publish(ctx, ChatChannel(sessionID), string(data)).Err(); err != nil {
		log.Printf("Failed to publish chat event to session %s: %v", sessionID, err)
	}
}
