package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"tigerengage-backend/internal/services"
)

func TestClientCommandParsing(t *testing.T) {
	raw := `{"type":"send_message","text":"hello","replied_to_id":"7f8a6f2e-13a5-4a37-9a3f-53a1a25c8a3b"}`

	var cmd clientCommand
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		t.Fatalf("Failed to parse command: %v", err)
	}

	if cmd.Type != "send_message" {
		t.Errorf("Expected send_message, got %q", cmd.Type)
	}
	if cmd.Text != "hello" {
		t.Errorf("Expected text hello, got %q", cmd.Text)
	}
	if cmd.RepliedToID == nil {
		t.Error("Expected replied_to_id to be set")
	}
	if cmd.MessageID != nil {
		t.Error("Expected message_id to be unset")
	}
}

// Error replies from the read loop and pub/sub broadcasts target the same
// socket from different goroutines; the per-client write lock must keep them
// from interleaving (gorilla/websocket allows one writer at a time).
func TestClientWriteConcurrent(t *testing.T) {
	upgraded := make(chan *client, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		upgraded <- &client{conn: conn}
	}))
	defer srv.Close()

	dialed, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer dialed.Close()

	c := <-upgraded
	defer c.conn.Close()

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := c.write([]byte(`{"type":"new_message"}`)); err != nil {
					t.Errorf("Write failed: %v", err)
					return
				}
			}
		}()
	}

	for received := 0; received < writers*perWriter; received++ {
		if _, _, err := dialed.ReadMessage(); err != nil {
			t.Fatalf("Read failed after %d messages: %v", received, err)
		}
	}
	wg.Wait()
}

func TestUserFacingError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"conflict passes through", &services.ConflictError{Message: "Chat is only available during an active session"}, "Chat is only available during an active session"},
		{"forbidden passes through", &services.ForbiddenError{Message: "You may only edit your own messages"}, "You may only edit your own messages"},
		{"internal errors are masked", errors.New("pq: connection reset"), "Internal error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := userFacingError(tc.err); got != tc.want {
				t.Errorf("userFacingError() = %q, want %q", got, tc.want)
			}
		})
	}
}
