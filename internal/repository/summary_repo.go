package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type SummaryRepo struct {
	db Querier
}

func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{db: pool}
}

func (r *SummaryRepo) WithTx(tx pgx.Tx) *SummaryRepo {
	return &SummaryRepo{db: tx}
}

// Upsert stores the generated summary for a question, replacing any earlier
// one. At most one summary exists per question.
func (r *SummaryRepo) Upsert(ctx context.Context, s *models.AnswerSummary) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO answer_summaries (id, question_id, text, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (question_id) DO UPDATE
		SET text = EXCLUDED.text, notes = EXCLUDED.notes, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, s.ID, s.QuestionID, s.Text, s.Notes).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SummaryRepo) GetByQuestion(ctx context.Context, questionID uuid.UUID) (*models.AnswerSummary, error) {
	s := &models.AnswerSummary{}
	query := `SELECT id, question_id, text, notes, created_at, updated_at
		FROM answer_summaries WHERE question_id = $1`

	err := r.db.QueryRow(ctx, query, questionID).Scan(
		&s.ID, &s.QuestionID, &s.Text, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
