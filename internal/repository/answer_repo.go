package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type AnswerRepo struct {
	db Querier
}

func NewAnswerRepo(pool *pgxpool.Pool) *AnswerRepo {
	return &AnswerRepo{db: pool}
}

func (r *AnswerRepo) WithTx(tx pgx.Tx) *AnswerRepo {
	return &AnswerRepo{db: tx}
}

func (r *AnswerRepo) Create(ctx context.Context, a *models.Answer) error {
	a.ID = uuid.New()

	query := `
		INSERT INTO answers (id, question_id, student_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return r.db.QueryRow(ctx, query, a.ID, a.QuestionID, a.StudentID, a.Text).
		Scan(&a.CreatedAt)
}

func (r *AnswerRepo) Exists(ctx context.Context, questionID, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM answers WHERE question_id = $1 AND student_id = $2)",
		questionID, studentID,
	).Scan(&exists)
	return exists, err
}

func (r *AnswerRepo) GetByQuestionAndStudent(ctx context.Context, questionID, studentID uuid.UUID) (*models.Answer, error) {
	a := &models.Answer{}
	query := `SELECT id, question_id, student_id, text, created_at
		FROM answers WHERE question_id = $1 AND student_id = $2`

	err := r.db.QueryRow(ctx, query, questionID, studentID).Scan(
		&a.ID, &a.QuestionID, &a.StudentID, &a.Text, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AnswerRepo) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.Answer, error) {
	query := `SELECT id, question_id, student_id, text, created_at
		FROM answers WHERE question_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []*models.Answer
	for rows.Next() {
		a := &models.Answer{}
		err := rows.Scan(&a.ID, &a.QuestionID, &a.StudentID, &a.Text, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *AnswerRepo) CountByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM answers WHERE question_id = $1", questionID,
	).Scan(&n)
	return n, err
}
