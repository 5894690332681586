package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type SessionRepo struct {
	db Querier
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: pool}
}

func (r *SessionRepo) WithTx(tx pgx.Tx) *SessionRepo {
	return &SessionRepo{db: tx}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.ClassSession) error {
	s.ID = uuid.New()
	s.IsActive = true

	query := `
		INSERT INTO class_sessions (id, class_id, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING start_time, ended`

	return r.db.QueryRow(ctx, query, s.ID, s.ClassID).Scan(&s.StartTime, &s.Ended)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ClassSession, error) {
	s := &models.ClassSession{}
	query := `SELECT id, class_id, start_time, end_time, is_active, ended
		FROM class_sessions WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ClassID, &s.StartTime, &s.EndTime, &s.IsActive, &s.Ended,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByClass returns the class's single active session, or pgx.ErrNoRows
// when the class is not in session.
func (r *SessionRepo) GetActiveByClass(ctx context.Context, classID uuid.UUID) (*models.ClassSession, error) {
	s := &models.ClassSession{}
	query := `SELECT id, class_id, start_time, end_time, is_active, ended
		FROM class_sessions WHERE class_id = $1 AND is_active`

	err := r.db.QueryRow(ctx, query, classID).Scan(
		&s.ID, &s.ClassID, &s.StartTime, &s.EndTime, &s.IsActive, &s.Ended,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// End closes a session: the active flag drops, the terminal ended flag is set,
// and the end time is stamped. Sessions are closed, never deleted.
func (r *SessionRepo) End(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE class_sessions
		SET is_active = FALSE, ended = TRUE, end_time = $1
		WHERE id = $2`, time.Now().UTC(), sessionID)
	return err
}

// GetActiveForUser resolves the active session a user currently belongs to,
// either as instructor of the session's class or as an enrolled student.
// A user is presumed tied to at most one active session at a time.
func (r *SessionRepo) GetActiveForUser(ctx context.Context, userID uuid.UUID) (*models.ClassSession, error) {
	s := &models.ClassSession{}
	query := `
		SELECT s.id, s.class_id, s.start_time, s.end_time, s.is_active, s.ended
		FROM class_sessions s
		JOIN classes c ON c.id = s.class_id
		WHERE s.is_active AND c.instructor_id = $1
		UNION
		SELECT s.id, s.class_id, s.start_time, s.end_time, s.is_active, s.ended
		FROM class_sessions s
		JOIN enrollments e ON e.class_id = s.class_id
		WHERE s.is_active AND e.student_id = $1
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.ClassID, &s.StartTime, &s.EndTime, &s.IsActive, &s.Ended,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
