package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SessionResolver maps a connecting user to the active session they belong
// to, as instructor or enrolled student.
type SessionResolver interface {
	GetActiveForUser(ctx context.Context, userID uuid.UUID) (*models.ClassSession, error)
}

// ChatSender handles inbound chat commands from a socket.
type ChatSender interface {
	Send(ctx context.Context, userID, classID uuid.UUID, req models.SendMessageRequest) (*models.ChatMessage, error)
	Edit(ctx context.Context, userID, messageID uuid.UUID, req models.EditMessageRequest) (*models.ChatMessage, error)
	Delete(ctx context.Context, userID, messageID uuid.UUID) error
}

// client wraps one socket with a write lock. gorilla/websocket allows at most
// one concurrent writer per connection, and both the read loop (error replies)
// and the pub/sub fan-out write to the same socket.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub keeps the open sockets of each live session and fans chat events out
// to them. Events arrive over redis pub/sub so every server instance serving
// the same session delivers them; with no redis client the hub falls back to
// broadcasting locally.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*client
	redisClient *redis.Client
	jwt         *middleware.JWTAuth
	sessions    SessionResolver
	chat        ChatSender
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client, jwt *middleware.JWTAuth, sessions SessionResolver, chat ChatSender) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*client),
		redisClient: redisClient,
		jwt:         jwt,
		sessions:    sessions,
		chat:        chat,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

// clientCommand is what a connected client may send over the socket.
type clientCommand struct {
	Type        string     `json:"type"`
	Text        string     `json:"text,omitempty"`
	RepliedToID *uuid.UUID `json:"replied_to_id,omitempty"`
	MessageID   *uuid.UUID `json:"message_id,omitempty"`
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, _, err := h.jwt.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.GetActiveForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.registerConnection(session.ID, c)

	go h.readLoop(userID, session, c)
}

func (h *Hub) readLoop(userID uuid.UUID, session *models.ClassSession, c *client) {
	defer h.unregisterConnection(session.ID, c)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.sendError(c, "Invalid message format")
			continue
		}

		ctx := context.Background()

		switch cmd.Type {
		case "send_message":
			msg, err := h.chat.Send(ctx, userID, session.ClassID, models.SendMessageRequest{
				Text:        cmd.Text,
				RepliedToID: cmd.RepliedToID,
			})
			if err != nil {
				h.sendError(c, userFacingError(err))
				continue
			}
			h.broadcastLocalFallback(session.ID, models.ChatEvent{Type: models.ChatEventNewMessage, Message: msg})

		case "edit_message":
			if cmd.MessageID == nil {
				h.sendError(c, "message_id is required")
				continue
			}
			msg, err := h.chat.Edit(ctx, userID, *cmd.MessageID, models.EditMessageRequest{Text: cmd.Text})
			if err != nil {
				h.sendError(c, userFacingError(err))
				continue
			}
			h.broadcastLocalFallback(session.ID, models.ChatEvent{Type: models.ChatEventMessageEdited, Message: msg})

		case "delete_message":
			if cmd.MessageID == nil {
				h.sendError(c, "message_id is required")
				continue
			}
			if err := h.chat.Delete(ctx, userID, *cmd.MessageID); err != nil {
				h.sendError(c, userFacingError(err))
				continue
			}
			h.broadcastLocalFallback(session.ID, models.ChatEvent{
				Type:    models.ChatEventMessageDeleted,
				Message: &models.ChatMessage{ID: *cmd.MessageID, SessionID: session.ID},
			})

		default:
			h.sendError(c, "Unknown command type: "+cmd.Type)
		}
	}
}

func (h *Hub) registerConnection(sessionID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], c)

	// Start pub/sub subscription on the session's first connection
	if h.redisClient != nil && len(h.connections[sessionID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[sessionID] = cancel
		go h.subscribeToPubSub(ctx, sessionID)
	}

	log.Printf("WebSocket connected: session %s (total: %d)", sessionID, len(h.connections[sessionID]))
}

func (h *Hub) unregisterConnection(sessionID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[sessionID]
	for i, existing := range conns {
		if existing == c {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If the room is empty, cancel pub/sub
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
		if cancel, ok := h.cancelFuncs[sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, sessionID)
		}
	}

	log.Printf("WebSocket disconnected: session %s", sessionID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, sessionID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, services.ChatChannel(sessionID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(sessionID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.connections[sessionID] {
		c.write(data)
	}
}

// broadcastLocalFallback delivers an event to the session's local sockets
// when no redis pub/sub carries it. With redis attached the subscription loop
// handles delivery instead.
func (h *Hub) broadcastLocalFallback(sessionID uuid.UUID, event models.ChatEvent) {
	if h.redisClient != nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.broadcast(sessionID, data)
}

func (h *Hub) sendError(c *client, message string) {
	data, err := json.Marshal(models.ChatEvent{Type: models.ChatEventError, Error: message})
	if err != nil {
		return
	}
	c.write(data)
}

// userFacingError keeps internal failure details off the socket.
func userFacingError(err error) string {
	switch err.(type) {
	case *services.ValidationError, *services.ConflictError, *services.NotFoundError,
		*services.ForbiddenError, *services.UnauthorizedError:
		return err.Error()
	default:
		return "Internal error"
	}
}
