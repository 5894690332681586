package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/models"
)

type EnrollmentRepo struct {
	db Querier
}

func NewEnrollmentRepo(pool *pgxpool.Pool) *EnrollmentRepo {
	return &EnrollmentRepo{db: pool}
}

func (r *EnrollmentRepo) WithTx(tx pgx.Tx) *EnrollmentRepo {
	return &EnrollmentRepo{db: tx}
}

func (r *EnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	e.ID = uuid.New()

	query := `
		INSERT INTO enrollments (id, student_id, class_id, is_ta)
		VALUES ($1, $2, $3, $4)
		RETURNING sessions_attended, score, created_at`

	return r.db.QueryRow(ctx, query, e.ID, e.StudentID, e.ClassID, e.IsTA).
		Scan(&e.SessionsAttended, &e.Score, &e.CreatedAt)
}

func (r *EnrollmentRepo) GetByStudentAndClass(ctx context.Context, studentID, classID uuid.UUID) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	query := `SELECT id, student_id, class_id, sessions_attended, score, is_ta, created_at
		FROM enrollments WHERE student_id = $1 AND class_id = $2`

	err := r.db.QueryRow(ctx, query, studentID, classID).Scan(
		&e.ID, &e.StudentID, &e.ClassID, &e.SessionsAttended, &e.Score, &e.IsTA, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EnrollmentRepo) IsEnrolled(ctx context.Context, studentID, classID uuid.UUID) (bool, error) {
	var enrolled bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2)",
		studentID, classID,
	).Scan(&enrolled)
	return enrolled, err
}

// ApplyCheckIn records one attended session and one earned point on the
// enrollment. Runs inside the same transaction as the attendance insert.
func (r *EnrollmentRepo) ApplyCheckIn(ctx context.Context, enrollmentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE enrollments
		SET sessions_attended = sessions_attended + 1,
		    score = score + 1
		WHERE id = $1`, enrollmentID)
	return err
}

// Roster lists the enrolled students of a class with their cumulative
// counters. Percentage columns are computed by the caller.
func (r *EnrollmentRepo) Roster(ctx context.Context, classID uuid.UUID) ([]*models.RosterEntry, error) {
	query := `SELECT u.id, u.name, u.email, e.sessions_attended, e.score, e.is_ta
		FROM enrollments e
		JOIN users u ON u.id = e.student_id
		WHERE e.class_id = $1
		ORDER BY u.name`

	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []*models.RosterEntry
	for rows.Next() {
		entry := &models.RosterEntry{}
		err := rows.Scan(&entry.StudentID, &entry.Name, &entry.Email,
			&entry.SessionsAttended, &entry.Score, &entry.IsTA)
		if err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}
