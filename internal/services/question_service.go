package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"tigerengage-backend/internal/database"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
)

// FeedbackQueue is the redis list the summarization workers consume.
const FeedbackQueue = "queue:answer-feedback"

// QuestionService owns the question lifecycle: authoring, the active flag
// (collecting answers) and the displayed flag (revealing results). Each flag
// is a class-wide singleton and the two are mutually exclusive on a single
// question.
type QuestionService struct {
	pool        *pgxpool.Pool
	classes     *repository.ClassRepo
	enrollments *repository.EnrollmentRepo
	sessions    *repository.SessionRepo
	questions   *repository.QuestionRepo
	queue       *redis.Client
}

func NewQuestionService(
	pool *pgxpool.Pool,
	classes *repository.ClassRepo,
	enrollments *repository.EnrollmentRepo,
	sessions *repository.SessionRepo,
	questions *repository.QuestionRepo,
	queueClient *redis.Client,
) *QuestionService {
	return &QuestionService{
		pool:        pool,
		classes:     classes,
		enrollments: enrollments,
		sessions:    sessions,
		questions:   questions,
		queue:       queueClient,
	}
}

func (s *QuestionService) Add(ctx context.Context, userID, classID uuid.UUID, req models.AddQuestionRequest) (*models.Question, error) {
	if _, err := requireInstructor(ctx, s.classes, classID, userID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	correctAnswer := strings.TrimSpace(req.CorrectAnswer)
	if fields := validateQuestionText(text, correctAnswer); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	question := &models.Question{ClassID: classID, Text: text, CorrectAnswer: correctAnswer}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// List returns the class's questions with answer counts, instructor only.
func (s *QuestionService) List(ctx context.Context, userID, classID uuid.UUID) ([]*models.QuestionOverview, error) {
	if _, err := requireInstructor(ctx, s.classes, classID, userID); err != nil {
		return nil, err
	}
	return s.questions.ListByClass(ctx, classID)
}

// Active returns the question currently collecting answers, for enrolled
// students polling during a session. NotFound when none is active.
func (s *QuestionService) Active(ctx context.Context, userID, classID uuid.UUID) (*models.Question, error) {
	if _, err := requireParticipant(ctx, s.classes, s.enrollments, classID, userID); err != nil {
		return nil, err
	}

	question, err := s.questions.GetActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No question is currently active"}
		}
		return nil, err
	}
	// Students never see the reference answer while answering.
	question.CorrectAnswer = ""
	return question, nil
}

// Displayed returns the question whose results are being revealed. NotFound
// when none is displayed.
func (s *QuestionService) Displayed(ctx context.Context, userID, classID uuid.UUID) (*models.Question, error) {
	if _, err := requireParticipant(ctx, s.classes, s.enrollments, classID, userID); err != nil {
		return nil, err
	}

	question, err := s.questions.GetDisplayedByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No question is currently displayed"}
		}
		return nil, err
	}
	return question, nil
}

// Ask toggles whether a question is collecting answers. Both directions need
// a live session; activation additionally needs a free activation slot. The
// flag check and flip commit together, backed by the partial unique index.
// Deactivation queues a summarization job after the commit, best effort: a
// queue failure is logged, never surfaced, and never rolls the deactivation
// back.
func (s *QuestionService) Ask(ctx context.Context, userID, classID, questionID uuid.UUID, activate bool) (*models.Question, error) {
	if _, err := requireInstructor(ctx, s.classes, classID, userID); err != nil {
		return nil, err
	}

	var question *models.Question
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		question, err = s.loadClassQuestion(ctx, tx, classID, questionID)
		if err != nil {
			return err
		}
		if _, err := s.requireActiveSession(ctx, tx, classID); err != nil {
			return err
		}

		if activate {
			current, err := s.currentFlagged(ctx, tx, classID, s.questions.WithTx(tx).GetActiveByClass)
			if err != nil {
				return err
			}
			if err := checkActivate(question, current); err != nil {
				return err
			}
		} else if err := checkDeactivate(question); err != nil {
			return err
		}

		if err := s.questions.WithTx(tx).SetActive(ctx, questionID, activate); err != nil {
			return err
		}
		question.IsActive = activate
		return nil
	})
	if err != nil {
		if repository.UniqueViolation(err) {
			return nil, &ConflictError{Message: "Another question is already active"}
		}
		return nil, err
	}

	if !activate {
		s.enqueueFeedback(ctx, questionID)
	}
	return question, nil
}

// Display toggles whether a question's results are shown to students. Both
// directions need a live session; showing additionally needs a deactivated
// question and a free display slot.
func (s *QuestionService) Display(ctx context.Context, userID, classID, questionID uuid.UUID, show bool) (*models.Question, error) {
	if _, err := requireInstructor(ctx, s.classes, classID, userID); err != nil {
		return nil, err
	}

	var question *models.Question
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		question, err = s.loadClassQuestion(ctx, tx, classID, questionID)
		if err != nil {
			return err
		}
		if _, err := s.requireActiveSession(ctx, tx, classID); err != nil {
			return err
		}

		if show {
			current, err := s.currentFlagged(ctx, tx, classID, s.questions.WithTx(tx).GetDisplayedByClass)
			if err != nil {
				return err
			}
			if err := checkShow(question, current); err != nil {
				return err
			}
		} else if err := checkHide(question); err != nil {
			return err
		}

		if err := s.questions.WithTx(tx).SetDisplayed(ctx, questionID, show); err != nil {
			return err
		}
		question.IsDisplayed = show
		return nil
	})
	if err != nil {
		if repository.UniqueViolation(err) {
			return nil, &ConflictError{Message: "Another question is already displayed"}
		}
		return nil, err
	}
	return question, nil
}

// Update edits a question's text and reference answer. Refused once the
// question has been touched by session activity: while it is active or
// displayed, and once it has any answers or a generated summary.
func (s *QuestionService) Update(ctx context.Context, userID, questionID uuid.UUID, req models.AddQuestionRequest) (*models.Question, error) {
	text := strings.TrimSpace(req.Text)
	correctAnswer := strings.TrimSpace(req.CorrectAnswer)
	if fields := validateQuestionText(text, correctAnswer); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var question *models.Question
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		question, err = s.loadOwnedQuestion(ctx, tx, userID, questionID)
		if err != nil {
			return err
		}
		if err := checkEditable(question); err != nil {
			return err
		}
		touched, err := s.questions.WithTx(tx).HasActivity(ctx, questionID)
		if err != nil {
			return err
		}
		if touched {
			return &ForbiddenError{Message: "Question already has answers or a summary and can no longer be edited"}
		}
		if err := s.questions.WithTx(tx).Update(ctx, questionID, text, correctAnswer); err != nil {
			return err
		}
		question.Text = text
		question.CorrectAnswer = correctAnswer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

// Delete removes a question and, via cascade, its answers and summary.
// Refused while the question is active or displayed.
func (s *QuestionService) Delete(ctx context.Context, userID, questionID uuid.UUID) error {
	return database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		question, err := s.loadOwnedQuestion(ctx, tx, userID, questionID)
		if err != nil {
			return err
		}
		if err := checkEditable(question); err != nil {
			return err
		}
		return s.questions.WithTx(tx).Delete(ctx, questionID)
	})
}

// loadOwnedQuestion fetches a question and verifies the caller instructs its
// class.
func (s *QuestionService) loadOwnedQuestion(ctx context.Context, tx pgx.Tx, userID, questionID uuid.UUID) (*models.Question, error) {
	question, err := s.questions.WithTx(tx).GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Question not found"}
		}
		return nil, err
	}
	if _, err := requireInstructor(ctx, s.classes, question.ClassID, userID); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) loadClassQuestion(ctx context.Context, tx pgx.Tx, classID, questionID uuid.UUID) (*models.Question, error) {
	question, err := s.questions.WithTx(tx).GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Question not found"}
		}
		return nil, err
	}
	if question.ClassID != classID {
		return nil, &NotFoundError{Message: "Question not found"}
	}
	return question, nil
}

func (s *QuestionService) requireActiveSession(ctx context.Context, tx pgx.Tx, classID uuid.UUID) (*models.ClassSession, error) {
	session, err := s.sessions.WithTx(tx).GetActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ForbiddenError{Message: "No active class session for this class"}
		}
		return nil, err
	}
	return session, nil
}

func (s *QuestionService) currentFlagged(ctx context.Context, tx pgx.Tx, classID uuid.UUID, get func(context.Context, uuid.UUID) (*models.Question, error)) (*models.Question, error) {
	current, err := get(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return current, nil
}

// enqueueFeedback queues a summarization job for the worker pool. The
// deactivation is already committed, so failures here only cost the summary.
func (s *QuestionService) enqueueFeedback(ctx context.Context, questionID uuid.UUID) {
	if s.queue == nil {
		return
	}

	job := models.FeedbackJob{QuestionID: questionID, QueuedAt: time.Now().UTC()}
	data, _ := json.Marshal(job)
	if err := s.queue.LPush(ctx, FeedbackQueue, string(data)).Err(); err != nil {
		log.Printf("Failed to enqueue feedback job for question %s: %v", questionID, err)
	}
}

func validateQuestionText(text, correctAnswer string) map[string]string {
	fields := make(map[string]string)
	if text == "" {
		fields["text"] = "Question text is required"
	}
	if utf8.RuneCountInString(text) > 200 {
		fields["text"] = "Question text must be at most 200 characters"
	}
	if correctAnswer == "" {
		fields["correct_answer"] = "A reference answer is required"
	}
	if utf8.RuneCountInString(correctAnswer) > 200 {
		fields["correct_answer"] = "Reference answer must be at most 200 characters"
	}
	return fields
}

// checkActivate verifies a question may start collecting answers. current is
// the class's currently active question, nil when the slot is free.
func checkActivate(q, current *models.Question) error {
	if q.IsDisplayed {
		return &ConflictError{Message: "Hide the question before activating it", ConflictID: q.ID, ConflictField: "displayed_question_id"}
	}
	if q.IsActive {
		return &ConflictError{Message: "Question is already active", ConflictID: q.ID, ConflictField: "active_question_id"}
	}
	if current != nil && current.ID != q.ID {
		return &ConflictError{Message: "Another question is already active", ConflictID: current.ID, ConflictField: "active_question_id"}
	}
	return nil
}

func checkDeactivate(q *models.Question) error {
	if !q.IsActive {
		return &ConflictError{Message: "Question is not active", ConflictID: q.ID}
	}
	return nil
}

// checkShow verifies a question's results may be revealed. current is the
// class's currently displayed question, nil when the slot is free.
func checkShow(q, current *models.Question) error {
	if q.IsActive {
		return &ConflictError{Message: "Deactivate the question before displaying it", ConflictID: q.ID, ConflictField: "active_question_id"}
	}
	if q.IsDisplayed {
		return &ConflictError{Message: "Question is already displayed", ConflictID: q.ID, ConflictField: "displayed_question_id"}
	}
	if current != nil && current.ID != q.ID {
		return &ConflictError{Message: "Another question is already displayed", ConflictID: current.ID, ConflictField: "displayed_question_id"}
	}
	return nil
}

func checkHide(q *models.Question) error {
	if !q.IsDisplayed {
		return &ConflictError{Message: "Question is not displayed", ConflictID: q.ID}
	}
	return nil
}

// checkEditable refuses edits and deletes while a question is in flight.
func checkEditable(q *models.Question) error {
	if q.IsActive {
		return &ForbiddenError{Message: "Question is active; deactivate it first"}
	}
	if q.IsDisplayed {
		return &ForbiddenError{Message: "Question is displayed; hide it first"}
	}
	return nil
}
