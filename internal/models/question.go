package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is an in-class prompt. IsActive means it is collecting answers;
// IsDisplayed means its results are being revealed to students. The two flags
// are mutually exclusive on a single question, and each is a class-wide
// singleton.
type Question struct {
	ID            uuid.UUID `json:"id"`
	ClassID       uuid.UUID `json:"class_id"`
	Text          string    `json:"text"`
	CorrectAnswer string    `json:"correct_answer"`
	IsActive      bool      `json:"is_active"`
	IsDisplayed   bool      `json:"is_displayed"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuestionOverview decorates a question with the activity counters the
// professor dashboard lists.
type QuestionOverview struct {
	Question
	AnswerCount int  `json:"answer_count"`
	HasSummary  bool `json:"has_summary"`
}

type Answer struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	StudentID  uuid.UUID `json:"student_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnswerSummary is the generated digest of student answers for a deactivated
// question, at most one per question. Notes carries the supplementary
// explanation.
type AnswerSummary struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QuestionFeedback is the student-facing reveal view: the question, the
// generated summary, and the student's own answer side by side.
type QuestionFeedback struct {
	Question      *Question      `json:"question"`
	Summary       *AnswerSummary `json:"summary,omitempty"`
	CorrectAnswer string         `json:"correct_answer"`
	YourAnswer    *Answer        `json:"your_answer,omitempty"`
}

type AddQuestionRequest struct {
	Text          string `json:"text"`
	CorrectAnswer string `json:"correct_answer"`
}

type AskQuestionRequest struct {
	Active bool `json:"active"`
}

type DisplayQuestionRequest struct {
	Displayed bool `json:"displayed"`
}

type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

// FeedbackJob is the payload queued for the summarization worker when a
// question is deactivated.
type FeedbackJob struct {
	QuestionID uuid.UUID `json:"question_id"`
	QueuedAt   time.Time `json:"queued_at"`
	RetryCount int       `json:"retry_count,omitempty"`
}
