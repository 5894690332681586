package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/database"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
)

// AnswerService handles student answer intake and the feedback view. A
// student submits at most one answer per question, and only while the
// question is active.
type AnswerService struct {
	pool        *pgxpool.Pool
	classes     *repository.ClassRepo
	enrollments *repository.EnrollmentRepo
	questions   *repository.QuestionRepo
	answers     *repository.AnswerRepo
	summaries   *repository.SummaryRepo
}

func NewAnswerService(
	pool *pgxpool.Pool,
	classes *repository.ClassRepo,
	enrollments *repository.EnrollmentRepo,
	questions *repository.QuestionRepo,
	answers *repository.AnswerRepo,
	summaries *repository.SummaryRepo,
) *AnswerService {
	return &AnswerService{
		pool:        pool,
		classes:     classes,
		enrollments: enrollments,
		questions:   questions,
		answers:     answers,
		summaries:   summaries,
	}
}

// Submit records a student's answer to an active question. A second attempt
// is a conflict; the unique (question, student) pair in the schema backs the
// check against concurrent submissions.
func (s *AnswerService) Submit(ctx context.Context, studentID, questionID uuid.UUID, req models.SubmitAnswerRequest) (*models.Answer, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "Answer text is required"}}
	}
	if utf8.RuneCountInString(text) > 5000 {
		return nil, &ValidationError{Fields: map[string]string{"text": "Answer must be at most 5000 characters"}}
	}

	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := requireEnrolled(ctx, s.enrollments, studentID, question.ClassID); err != nil {
		return nil, err
	}

	answer := &models.Answer{QuestionID: questionID, StudentID: studentID, Text: text}
	err = database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := s.questions.WithTx(tx).GetByID(ctx, questionID)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return &ForbiddenError{Message: "Question is not accepting answers"}
		}

		already, err := s.answers.WithTx(tx).Exists(ctx, questionID, studentID)
		if err != nil {
			return err
		}
		if already {
			return &ConflictError{Message: "You have already answered this question"}
		}

		return s.answers.WithTx(tx).Create(ctx, answer)
	})
	if err != nil {
		if repository.UniqueViolation(err) {
			return nil, &ConflictError{Message: "You have already answered this question"}
		}
		return nil, err
	}
	return answer, nil
}

// ListForQuestion returns every answer to a question, instructor only.
func (s *AnswerService) ListForQuestion(ctx context.Context, userID, questionID uuid.UUID) ([]*models.Answer, error) {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := requireInstructor(ctx, s.classes, question.ClassID, userID); err != nil {
		return nil, err
	}
	return s.answers.ListByQuestion(ctx, questionID)
}

// Feedback assembles the reveal view for a displayed question: the question
// with its reference answer, the generated summary when one exists, and the
// caller's own answer. Students only see it while the question is displayed;
// the instructor may look at any time.
func (s *AnswerService) Feedback(ctx context.Context, userID, questionID uuid.UUID) (*models.QuestionFeedback, error) {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	class, err := requireParticipant(ctx, s.classes, s.enrollments, question.ClassID, userID)
	if err != nil {
		return nil, err
	}

	isInstructor := class.InstructorID == userID
	if !isInstructor && !question.IsDisplayed {
		return nil, &ForbiddenError{Message: "Results for this question are not being displayed"}
	}

	feedback := &models.QuestionFeedback{
		Question:      question,
		CorrectAnswer: question.CorrectAnswer,
	}

	summary, err := s.summaries.GetByQuestion(ctx, questionID)
	if err == nil {
		feedback.Summary = summary
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if !isInstructor {
		own, err := s.answers.GetByQuestionAndStudent(ctx, questionID, userID)
		if err == nil {
			feedback.YourAnswer = own
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	return feedback, nil
}

func (s *AnswerService) getQuestion(ctx context.Context, questionID uuid.UUID) (*models.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Question not found"}
		}
		return nil, err
	}
	return question, nil
}
