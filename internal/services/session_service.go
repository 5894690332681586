package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tigerengage-backend/internal/database"
	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
)

// SessionService owns the class-session lifecycle. Starting a session bumps
// the class counters in the same transaction; ending one is refused while any
// question is still active or displayed.
type SessionService struct {
	pool        *pgxpool.Pool
	classes     *repository.ClassRepo
	enrollments *repository.EnrollmentRepo
	sessions    *repository.SessionRepo
	questions   *repository.QuestionRepo
}

func NewSessionService(
	pool *pgxpool.Pool,
	classes *repository.ClassRepo,
	enrollments *repository.EnrollmentRepo,
	sessions *repository.SessionRepo,
	questions *repository.QuestionRepo,
) *SessionService {
	return &SessionService{
		pool:        pool,
		classes:     classes,
		enrollments: enrollments,
		sessions:    sessions,
		questions:   questions,
	}
}

// Start opens a new session for the class. Only the instructor may start one,
// and only when no session is already active. The session insert and the
// counter increments commit together; the partial unique index on
// class_sessions backs the check against concurrent starts.
func (s *SessionService) Start(ctx context.Context, userID, classID uuid.UUID) (*models.ClassSession, error) {
	if _, err := requireInstructor(ctx, s.classes, classID, userID); err != nil {
		return nil, err
	}

	session := &models.ClassSession{ClassID: classID}
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		existing, err := s.sessions.WithTx(tx).GetActiveByClass(ctx, classID)
		if err == nil {
			return &ConflictError{
				Message:       "A class session is already active",
				ConflictID:    existing.ID,
				ConflictField: "active_session_id",
			}
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if err := s.classes.WithTx(tx).IncrementSessionCounters(ctx, classID); err != nil {
			return err
		}
		return s.sessions.WithTx(tx).Create(ctx, session)
	})
	if err != nil {
		if repository.UniqueViolation(err) {
			return nil, &ConflictError{Message: "A class session is already active"}
		}
		return nil, err
	}
	return session, nil
}

// End closes the class's active session. Refused while any question of the
// class is still active or displayed, so the question lifecycle always
// resolves inside the session that raised it.
func (s *SessionService) End(ctx context.Context, userID, classID uuid.UUID) (*models.ClassSession, error) {
	if _, err := requireInstructor(ctx, s.classes, classID, userID); err != nil {
		return nil, err
	}

	var session *models.ClassSession
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		session, err = s.sessions.WithTx(tx).GetActiveByClass(ctx, classID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &NotFoundError{Message: "No active session for this class"}
			}
			return err
		}

		inFlight, err := s.questions.WithTx(tx).CountInFlight(ctx, classID)
		if err != nil {
			return err
		}
		if inFlight > 0 {
			return &ConflictError{Message: "Deactivate and hide all questions before ending the session"}
		}

		return s.sessions.WithTx(tx).End(ctx, session.ID)
	})
	if err != nil {
		return nil, err
	}

	session, err = s.sessions.GetByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Status reports whether the class is in session. Any participant of the
// class may ask; the call never mutates anything.
func (s *SessionService) Status(ctx context.Context, userID, classID uuid.UUID) (*models.SessionStatus, error) {
	if _, err := requireParticipant(ctx, s.classes, s.enrollments, classID, userID); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.SessionStatus{Active: false}, nil
		}
		return nil, err
	}
	return &models.SessionStatus{Active: true, SessionID: &session.ID}, nil
}
