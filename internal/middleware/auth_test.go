package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndParseToken(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	userID := uuid.New()

	token, err := auth.GenerateAccessToken(userID, "prof@example.com", "professor")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	parsedID, role, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if parsedID != userID {
		t.Errorf("Expected user id %s, got %s", userID, parsedID)
	}
	if role != "professor" {
		t.Errorf("Expected role professor, got %q", role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	auth := NewJWTAuth("secret-a")
	token, err := auth.GenerateAccessToken(uuid.New(), "user@example.com", "student")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	other := NewJWTAuth("secret-b")
	if _, _, err := other.ParseToken(token); err == nil {
		t.Error("Expected token signed with a different secret to be rejected")
	}
}

func TestMiddleware_RejectsMissingAndMalformedHeaders(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be reached")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/classes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			auth.Middleware(next).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestMiddleware_AttachesUserContext(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	userID := uuid.New()

	token, err := auth.GenerateAccessToken(userID, "ta@example.com", "student")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	var gotID uuid.UUID
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		gotRole = GetUserRole(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/classes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	auth.Middleware(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if gotID != userID {
		t.Errorf("Expected user id %s in context, got %s", userID, gotID)
	}
	if gotRole != "student" {
		t.Errorf("Expected role student in context, got %q", gotRole)
	}
}
