package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// FeedbackService wraps the Gemini model that digests student answers into a
// class-wide summary after a question is deactivated.
type FeedbackService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewFeedbackService(apiKey string, concurrentReqs int) (*FeedbackService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &FeedbackService{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (s *FeedbackService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *FeedbackService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *FeedbackService) releaseRate() {
	s.rateChan <- struct{}{}
}

// SummarizeAnswers digests the collected answers into a short summary of how
// the class answered, plus teaching notes comparing them with the reference
// answer. Answers are anonymous in the prompt.
func (s *FeedbackService) SummarizeAnswers(ctx context.Context, questionText, correctAnswer string, answers []string) (summary, notes string, err error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", "", err
	}
	defer s.releaseRate()

	prompt := buildFeedbackPrompt(questionText, correctAnswer, answers)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", "", fmt.Errorf("Gemini API error: %w", err)
	}

	rawText := extractText(resp)
	if rawText == "" {
		return "", "", fmt.Errorf("Gemini returned empty feedback")
	}

	summary, notes = parseFeedbackSections(rawText)
	if summary == "" {
		summary = strings.TrimSpace(rawText)
	}
	return summary, notes, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// parseFeedbackSections splits the model output on its [SUMMARY] and [NOTES]
// headers. Missing headers leave the corresponding section empty.
func parseFeedbackSections(text string) (summary, notes string) {
	upper := strings.ToUpper(text)

	summaryIdx := strings.Index(upper, "[SUMMARY]")
	notesIdx := strings.Index(upper, "[NOTES]")

	if summaryIdx >= 0 {
		end := len(text)
		if notesIdx > summaryIdx {
			end = notesIdx
		}
		summary = strings.TrimSpace(text[summaryIdx+9 : end])
	}
	if notesIdx >= 0 {
		notes = strings.TrimSpace(text[notesIdx+7:])
	}

	return
}

func buildFeedbackPrompt(questionText, correctAnswer string, answers []string) string {
	var b strings.Builder

	b.WriteString("You are an expert teaching assistant. A professor asked their class the question below and collected the students' free-text answers. Summarize how the class answered.\n\n")
	b.WriteString("Format: provide two clearly labeled sections with these exact headers and order:\n[SUMMARY]\n[NOTES]\n")
	b.WriteString("In [SUMMARY], describe in at most 150 words the common themes across the answers, including frequent misconceptions. In [NOTES], compare the class's answers against the reference answer and point out what the professor should revisit. Plain text only; do not use markdown tables or pipes (|); never mention individual students.\n\n")

	b.WriteString(fmt.Sprintf("Question: %s\n\n", questionText))
	b.WriteString(fmt.Sprintf("Reference answer: %s\n\n", correctAnswer))

	b.WriteString(fmt.Sprintf("---STUDENT ANSWERS (%d)---\n", len(answers)))
	for i, answer := range answers {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, answer))
	}
	b.WriteString("---END STUDENT ANSWERS---\n")

	return b.String()
}
