package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type AttendanceRepo struct {
	db Querier
}

func NewAttendanceRepo(pool *pgxpool.Pool) *AttendanceRepo {
	return &AttendanceRepo{db: pool}
}

func (r *AttendanceRepo) WithTx(tx pgx.Tx) *AttendanceRepo {
	return &AttendanceRepo{db: tx}
}

func (r *AttendanceRepo) Create(ctx context.Context, a *models.Attendance) error {
	a.ID = uuid.New()

	query := `
		INSERT INTO attendances (id, session_id, student_id)
		VALUES ($1, $2, $3)
		RETURNING checked_at`

	return r.db.QueryRow(ctx, query, a.ID, a.SessionID, a.StudentID).Scan(&a.CheckedAt)
}

// Get returns the attendance row for a (session, student) pair, or
// pgx.ErrNoRows when the student has not checked in.
func (r *AttendanceRepo) Get(ctx context.Context, sessionID, studentID uuid.UUID) (*models.Attendance, error) {
	a := &models.Attendance{}
	err := r.db.QueryRow(ctx,
		"SELECT id, session_id, student_id, checked_at FROM attendances WHERE session_id = $1 AND student_id = $2",
		sessionID, studentID,
	).Scan(&a.ID, &a.SessionID, &a.StudentID, &a.CheckedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
