package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"tigerengage-backend/internal/models"
)

func question(active, displayed bool) *models.Question {
	return &models.Question{
		ID:          uuid.New(),
		ClassID:     uuid.New(),
		Text:        "What is a B-tree?",
		IsActive:    active,
		IsDisplayed: displayed,
	}
}

func TestCheckActivate(t *testing.T) {
	t.Run("idle question with free slot", func(t *testing.T) {
		if err := checkActivate(question(false, false), nil); err != nil {
			t.Fatalf("Expected activation to be allowed, got %v", err)
		}
	})

	t.Run("displayed question cannot activate", func(t *testing.T) {
		q := question(false, true)
		err := checkActivate(q, nil)
		conflict, ok := err.(*ConflictError)
		if !ok {
			t.Fatalf("Expected ConflictError, got %v", err)
		}
		if conflict.ConflictID != q.ID {
			t.Errorf("Expected conflict id %s, got %s", q.ID, conflict.ConflictID)
		}
		if conflict.ConflictField != "displayed_question_id" {
			t.Errorf("Expected displayed_question_id field, got %q", conflict.ConflictField)
		}
	})

	t.Run("already active question", func(t *testing.T) {
		err := checkActivate(question(true, false), nil)
		if _, ok := err.(*ConflictError); !ok {
			t.Fatalf("Expected ConflictError, got %v", err)
		}
	})

	t.Run("slot held by another question", func(t *testing.T) {
		current := question(true, false)
		err := checkActivate(question(false, false), current)
		conflict, ok := err.(*ConflictError)
		if !ok {
			t.Fatalf("Expected ConflictError, got %v", err)
		}
		if conflict.ConflictID != current.ID {
			t.Errorf("Conflict should report the blocking question, got %s", conflict.ConflictID)
		}
		if conflict.ConflictField != "active_question_id" {
			t.Errorf("Expected active_question_id field, got %q", conflict.ConflictField)
		}
	})
}

func TestCheckDeactivate(t *testing.T) {
	if err := checkDeactivate(question(true, false)); err != nil {
		t.Errorf("Expected deactivation of active question to be allowed, got %v", err)
	}

	err := checkDeactivate(question(false, false))
	if _, ok := err.(*ConflictError); !ok {
		t.Errorf("Expected ConflictError for inactive question, got %v", err)
	}
}

func TestCheckShow(t *testing.T) {
	t.Run("deactivated question with free slot", func(t *testing.T) {
		if err := checkShow(question(false, false), nil); err != nil {
			t.Fatalf("Expected display to be allowed, got %v", err)
		}
	})

	t.Run("active question cannot display", func(t *testing.T) {
		q := question(true, false)
		err := checkShow(q, nil)
		conflict, ok := err.(*ConflictError)
		if !ok {
			t.Fatalf("Expected ConflictError, got %v", err)
		}
		if conflict.ConflictField != "active_question_id" {
			t.Errorf("Expected active_question_id field, got %q", conflict.ConflictField)
		}
	})

	t.Run("slot held by another question", func(t *testing.T) {
		current := question(false, true)
		err := checkShow(question(false, false), current)
		conflict, ok := err.(*ConflictError)
		if !ok {
			t.Fatalf("Expected ConflictError, got %v", err)
		}
		if conflict.ConflictID != current.ID {
			t.Errorf("Conflict should report the blocking question, got %s", conflict.ConflictID)
		}
	})
}

func TestCheckHide(t *testing.T) {
	if err := checkHide(question(false, true)); err != nil {
		t.Errorf("Expected hide of displayed question to be allowed, got %v", err)
	}

	err := checkHide(question(false, false))
	if _, ok := err.(*ConflictError); !ok {
		t.Errorf("Expected ConflictError for hidden question, got %v", err)
	}
}

func TestCheckEditable(t *testing.T) {
	tests := []struct {
		name      string
		active    bool
		displayed bool
		wantErr   bool
	}{
		{"idle question", false, false, false},
		{"active question", true, false, true},
		{"displayed question", false, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checkEditable(question(tc.active, tc.displayed))
			if tc.wantErr {
				if _, ok := err.(*ForbiddenError); !ok {
					t.Errorf("Expected ForbiddenError, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Expected edit to be allowed, got %v", err)
			}
		})
	}
}

func TestValidateQuestionText(t *testing.T) {
	if fields := validateQuestionText("What is a mutex?", "A lock"); len(fields) > 0 {
		t.Errorf("Expected no field errors, got %v", fields)
	}

	fields := validateQuestionText("", "")
	if fields["text"] == "" {
		t.Error("Expected an error for missing text")
	}
	if fields["correct_answer"] == "" {
		t.Error("Expected an error for missing reference answer")
	}

	long := strings.Repeat("a", 201)
	if fields := validateQuestionText(long, "answer"); fields["text"] == "" {
		t.Error("Expected an error for overlong text")
	}
	if fields := validateQuestionText("What is a mutex?", long); fields["correct_answer"] == "" {
		t.Error("Expected an error for overlong reference answer")
	}

	// Bound counts characters, not bytes: 150 two-byte runes are fine.
	accented := strings.Repeat("é", 150)
	if fields := validateQuestionText(accented, accented); len(fields) > 0 {
		t.Errorf("Expected multi-byte text within the bound to pass, got %v", fields)
	}
	if fields := validateQuestionText(strings.Repeat("é", 201), "answer"); fields["text"] == "" {
		t.Error("Expected an error for text over 200 characters")
	}
}
