package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"tigerengage-backend/internal/models"
)

func TestMessageRole(t *testing.T) {
	tests := []struct {
		name         string
		isInstructor bool
		isTA         bool
		want         string
	}{
		{"instructor", true, false, models.RoleProfessor},
		{"instructor who is also ta somewhere", true, true, models.RoleProfessor},
		{"teaching assistant", false, true, models.RoleTA},
		{"plain student", false, false, models.RoleStudent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := messageRole(tc.isInstructor, tc.isTA); got != tc.want {
				t.Errorf("messageRole(%v, %v) = %q, want %q", tc.isInstructor, tc.isTA, got, tc.want)
			}
		})
	}
}

func TestValidateMessageText(t *testing.T) {
	if fields := validateMessageText("hello"); len(fields) > 0 {
		t.Errorf("Expected no field errors, got %v", fields)
	}

	if fields := validateMessageText(""); fields["text"] == "" {
		t.Error("Expected an error for empty text")
	}

	if fields := validateMessageText(strings.Repeat("a", 2001)); fields["text"] == "" {
		t.Error("Expected an error for overlong text")
	}

	// Bound counts characters, not bytes.
	if fields := validateMessageText(strings.Repeat("é", 1500)); len(fields) > 0 {
		t.Errorf("Expected multi-byte text within the bound to pass, got %v", fields)
	}
}

func TestChatChannel(t *testing.T) {
	sessionID := uuid.New()
	channel := ChatChannel(sessionID)

	if channel != "chat:session:"+sessionID.String() {
		t.Errorf("Unexpected channel name: %q", channel)
	}
}
