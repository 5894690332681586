package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type QuestionRepo struct {
	db Querier
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{db: pool}
}

func (r *QuestionRepo) WithTx(tx pgx.Tx) *QuestionRepo {
	return &QuestionRepo{db: tx}
}

func (r *QuestionRepo) Create(ctx context.Context, q *models.Question) error {
	q.ID = uuid.New()

	query := `
		INSERT INTO questions (id, class_id, text, correct_answer)
		VALUES ($1, $2, $3, $4)
		RETURNING is_active, is_displayed, created_at`

	return r.db.QueryRow(ctx, query, q.ID, q.ClassID, q.Text, q.CorrectAnswer).
		Scan(&q.IsActive, &q.IsDisplayed, &q.CreatedAt)
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q := &models.Question{}
	query := `SELECT id, class_id, text, correct_answer, is_active, is_displayed, created_at
		FROM questions WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.ClassID, &q.Text, &q.CorrectAnswer, &q.IsActive, &q.IsDisplayed, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByClass returns the class's questions with their answer counts and
// whether a generated summary exists, newest first.
func (r *QuestionRepo) ListByClass(ctx context.Context, classID uuid.UUID) ([]*models.QuestionOverview, error) {
	query := `SELECT q.id, q.class_id, q.text, q.correct_answer, q.is_active, q.is_displayed, q.created_at,
		(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id),
		EXISTS(SELECT 1 FROM answer_summaries s WHERE s.question_id = q.id)
		FROM questions q
		WHERE q.class_id = $1
		ORDER BY q.created_at DESC`

	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*models.QuestionOverview
	for rows.Next() {
		q := &models.QuestionOverview{}
		err := rows.Scan(&q.ID, &q.ClassID, &q.Text, &q.CorrectAnswer,
			&q.IsActive, &q.IsDisplayed, &q.CreatedAt, &q.AnswerCount, &q.HasSummary)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetActiveByClass returns the class's single active question, or
// pgx.ErrNoRows when none is collecting answers.
func (r *QuestionRepo) GetActiveByClass(ctx context.Context, classID uuid.UUID) (*models.Question, error) {
	return r.getFlagged(ctx, classID, "is_active")
}

// GetDisplayedByClass returns the class's single displayed question, or
// pgx.ErrNoRows when none is being revealed.
func (r *QuestionRepo) GetDisplayedByClass(ctx context.Context, classID uuid.UUID) (*models.Question, error) {
	return r.getFlagged(ctx, classID, "is_displayed")
}

func (r *QuestionRepo) getFlagged(ctx context.Context, classID uuid.UUID, flag string) (*models.Question, error) {
	q := &models.Question{}
	query := `SELECT id, class_id, text, correct_answer, is_active, is_displayed, created_at
		FROM questions WHERE class_id = $1 AND ` + flag

	err := r.db.QueryRow(ctx, query, classID).Scan(
		&q.ID, &q.ClassID, &q.Text, &q.CorrectAnswer, &q.IsActive, &q.IsDisplayed, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.db.Exec(ctx, "UPDATE questions SET is_active = $1 WHERE id = $2", active, id)
	return err
}

func (r *QuestionRepo) SetDisplayed(ctx context.Context, id uuid.UUID, displayed bool) error {
	_, err := r.db.Exec(ctx, "UPDATE questions SET is_displayed = $1 WHERE id = $2", displayed, id)
	return err
}

// CountInFlight counts the class's questions that are active or displayed; a
// session may only end when this is zero.
func (r *QuestionRepo) CountInFlight(ctx context.Context, classID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM questions WHERE class_id = $1 AND (is_active OR is_displayed)",
		classID,
	).Scan(&n)
	return n, err
}

// HasActivity reports whether the question has collected any answers or a
// generated summary, which freezes its text against edits.
func (r *QuestionRepo) HasActivity(ctx context.Context, id uuid.UUID) (bool, error) {
	var touched bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM answers WHERE question_id = $1)
			OR EXISTS(SELECT 1 FROM answer_summaries WHERE question_id = $1)`,
		id,
	).Scan(&touched)
	return touched, err
}

func (r *QuestionRepo) Update(ctx context.Context, id uuid.UUID, text, correctAnswer string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE questions SET text = $1, correct_answer = $2 WHERE id = $3",
		text, correctAnswer, id,
	)
	return err
}

// Delete removes the question; answers and its summary go with it via the
// schema's ON DELETE CASCADE.
func (r *QuestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, "DELETE FROM questions WHERE id = $1", id)
	return err
}
