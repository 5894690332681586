package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/database"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
)

// AttendanceService records student check-ins against the active session of
// a class. A check-in is idempotent per (session, student): the attendance
// row, the sessions_attended bump, and the score point commit as one unit.
type AttendanceService struct {
	pool        *pgxpool.Pool
	classes     *repository.ClassRepo
	enrollments *repository.EnrollmentRepo
	sessions    *repository.SessionRepo
	attendances *repository.AttendanceRepo
}

func NewAttendanceService(
	pool *pgxpool.Pool,
	classes *repository.ClassRepo,
	enrollments *repository.EnrollmentRepo,
	sessions *repository.SessionRepo,
	attendances *repository.AttendanceRepo,
) *AttendanceService {
	return &AttendanceService{
		pool:        pool,
		classes:     classes,
		enrollments: enrollments,
		sessions:    sessions,
		attendances: attendances,
	}
}

// CheckIn marks the student present for the class's active session. A repeat
// check-in succeeds without awarding a second point and reports that the
// student was already counted; the unique (session, student) pair in the
// schema backs the check against concurrent requests.
func (s *AttendanceService) CheckIn(ctx context.Context, studentID, classID uuid.UUID) (*models.Attendance, bool, error) {
	enrollment, err := requireEnrolled(ctx, s.enrollments, studentID, classID)
	if err != nil {
		return nil, false, err
	}

	session, err := s.sessions.GetActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, &NotFoundError{Message: "No active session to check in to"}
		}
		return nil, false, err
	}

	var attendance *models.Attendance
	var already bool
	err = database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		existing, err := s.attendances.WithTx(tx).Get(ctx, session.ID, studentID)
		if err == nil {
			attendance = existing
			already = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		attendance = &models.Attendance{SessionID: session.ID, StudentID: studentID}
		if err := s.attendances.WithTx(tx).Create(ctx, attendance); err != nil {
			return err
		}
		return s.enrollments.WithTx(tx).ApplyCheckIn(ctx, enrollment.ID)
	})
	if err != nil {
		if repository.UniqueViolation(err) {
			// A concurrent request won the insert; report theirs.
			existing, gerr := s.attendances.Get(ctx, session.ID, studentID)
			if gerr == nil {
				return existing, true, nil
			}
			return nil, false, err
		}
		return nil, false, err
	}
	return attendance, already, nil
}

// ScorePercentage converts earned points into a percentage of the attainable
// total, rounded to two decimals. Zero attainable means zero percent.
func ScorePercentage(score, possibleScores int) float64 {
	if possibleScores <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(possibleScores)*10000) / 100
}

// AttendancePercentage converts attended sessions into a percentage of the
// sessions held so far, rounded to two decimals. Zero held means zero percent.
func AttendancePercentage(attended, totalSessions int) float64 {
	if totalSessions <= 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(totalSessions)*10000) / 100
}
