package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type ClassRepo struct {
	db Querier
}

func NewClassRepo(pool *pgxpool.Pool) *ClassRepo {
	return &ClassRepo{db: pool}
}

func (r *ClassRepo) WithTx(tx pgx.Tx) *ClassRepo {
	return &ClassRepo{db: tx}
}

func (r *ClassRepo) Create(ctx context.Context, c *models.Class) error {
	c.ID = uuid.New()

	query := `
		INSERT INTO classes (id, title, instructor_id)
		VALUES ($1, $2, $3)
		RETURNING total_sessions_planned, possible_scores, created_at`

	return r.db.QueryRow(ctx, query, c.ID, c.Title, c.InstructorID).
		Scan(&c.TotalSessionsPlanned, &c.PossibleScores, &c.CreatedAt)
}

func (r *ClassRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	c := &models.Class{}
	query := `SELECT id, title, instructor_id, total_sessions_planned, possible_scores, created_at
		FROM classes WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.InstructorID, &c.TotalSessionsPlanned, &c.PossibleScores, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClassRepo) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*models.Class, error) {
	query := `SELECT id, title, instructor_id, total_sessions_planned, possible_scores, created_at
		FROM classes WHERE instructor_id = $1 ORDER BY created_at`

	return r.list(ctx, query, instructorID)
}

func (r *ClassRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Class, error) {
	query := `SELECT c.id, c.title, c.instructor_id, c.total_sessions_planned, c.possible_scores, c.created_at
		FROM classes c
		JOIN enrollments e ON e.class_id = c.id
		WHERE e.student_id = $1
		ORDER BY c.created_at`

	return r.list(ctx, query, studentID)
}

// IncrementSessionCounters bumps both class-wide counters when a session
// starts: one more planned session, one more attainable attendance point.
func (r *ClassRepo) IncrementSessionCounters(ctx context.Context, classID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE classes
		SET total_sessions_planned = total_sessions_planned + 1,
		    possible_scores = possible_scores + 1
		WHERE id = $1`, classID)
	return err
}

func (r *ClassRepo) list(ctx context.Context, query string, args ...any) ([]*models.Class, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		c := &models.Class{}
		err := rows.Scan(&c.ID, &c.Title, &c.InstructorID, &c.TotalSessionsPlanned, &c.PossibleScores, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}
