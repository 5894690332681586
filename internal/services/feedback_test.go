package services

import (
	"strings"
	"testing"
)

func TestParseFeedbackSections(t *testing.T) {
	t.Run("both sections present", func(t *testing.T) {
		text := "[SUMMARY]\nMost students described a mutex correctly.\n[NOTES]\nRevisit deadlock ordering."
		summary, notes := parseFeedbackSections(text)

		if summary != "Most students described a mutex correctly." {
			t.Errorf("Unexpected summary: %q", summary)
		}
		if notes != "Revisit deadlock ordering." {
			t.Errorf("Unexpected notes: %q", notes)
		}
	})

	t.Run("missing notes section", func(t *testing.T) {
		summary, notes := parseFeedbackSections("[SUMMARY]\nAll answers matched the reference.")
		if summary != "All answers matched the reference." {
			t.Errorf("Unexpected summary: %q", summary)
		}
		if notes != "" {
			t.Errorf("Expected empty notes, got %q", notes)
		}
	})

	t.Run("no headers at all", func(t *testing.T) {
		summary, notes := parseFeedbackSections("plain response without markers")
		if summary != "" || notes != "" {
			t.Errorf("Expected empty sections, got %q / %q", summary, notes)
		}
	})

	t.Run("lowercase headers", func(t *testing.T) {
		summary, _ := parseFeedbackSections("[summary]\ncase insensitive parsing")
		if summary != "case insensitive parsing" {
			t.Errorf("Unexpected summary: %q", summary)
		}
	})
}

func TestBuildFeedbackPrompt(t *testing.T) {
	answers := []string{"A lock", "A synchronization primitive"}
	prompt := buildFeedbackPrompt("What is a mutex?", "A mutual exclusion lock", answers)

	if !strings.Contains(prompt, "[SUMMARY]") || !strings.Contains(prompt, "[NOTES]") {
		t.Error("Prompt should instruct the section headers")
	}
	if !strings.Contains(prompt, "Question: What is a mutex?") {
		t.Error("Prompt should contain the question")
	}
	if !strings.Contains(prompt, "Reference answer: A mutual exclusion lock") {
		t.Error("Prompt should contain the reference answer")
	}
	if !strings.Contains(prompt, "STUDENT ANSWERS (2)") {
		t.Error("Prompt should carry the answer count")
	}
	for i, a := range answers {
		if !strings.Contains(prompt, a) {
			t.Errorf("Prompt missing answer %d: %q", i+1, a)
		}
	}
}
