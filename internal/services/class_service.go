package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
)

type ClassService struct {
	classes     *repository.ClassRepo
	enrollments *repository.EnrollmentRepo
}

func NewClassService(classes *repository.ClassRepo, enrollments *repository.EnrollmentRepo) *ClassService {
	return &ClassService{classes: classes, enrollments: enrollments}
}

func (s *ClassService) Create(ctx context.Context, userID uuid.UUID, role string, req models.CreateClassRequest) (*models.Class, error) {
	if role != models.RoleProfessor {
		return nil, &ForbiddenError{Message: "Only professors may create classes"}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, &ValidationError{Fields: map[string]string{"title": "Title is required"}}
	}
	if len(title) > 200 {
		return nil, &ValidationError{Fields: map[string]string{"title": "Title must be at most 200 characters"}}
	}

	class := &models.Class{Title: title, InstructorID: userID}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// ListForUser returns the classes a user teaches or is enrolled in, depending
// on their account role.
func (s *ClassService) ListForUser(ctx context.Context, userID uuid.UUID, role string) ([]*models.Class, error) {
	if role == models.RoleProfessor {
		return s.classes.ListByInstructor(ctx, userID)
	}
	return s.classes.ListByStudent(ctx, userID)
}

func (s *ClassService) Get(ctx context.Context, userID, classID uuid.UUID) (*models.Class, error) {
	return requireParticipant(ctx, s.classes, s.enrollments, classID, userID)
}

// Enroll adds a student to a class. Instructors cannot enroll in their own
// class, and enrolling twice is a conflict; the unique (student, class) pair
// in the schema backs the check against concurrent requests.
func (s *ClassService) Enroll(ctx context.Context, userID uuid.UUID, role string, classID uuid.UUID) (*models.Enrollment, error) {
	if role != models.RoleStudent {
		return nil, &ForbiddenError{Message: "Only students may enroll in classes"}
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Class not found"}
		}
		return nil, err
	}
	if class.InstructorID == userID {
		return nil, &ConflictError{Message: "You are the instructor of this class"}
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, userID, classID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, &ConflictError{Message: "Already enrolled in this class"}
	}

	enrollment := &models.Enrollment{StudentID: userID, ClassID: classID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if repository.UniqueViolation(err) {
			return nil, &ConflictError{Message: "Already enrolled in this class"}
		}
		return nil, err
	}
	return enrollment, nil
}

// Roster lists the class's students with their attendance and score
// percentages. Instructor only.
func (s *ClassService) Roster(ctx context.Context, userID, classID uuid.UUID) ([]*models.RosterEntry, error) {
	class, err := requireInstructor(ctx, s.classes, classID, userID)
	if err != nil {
		return nil, err
	}

	roster, err := s.enrollments.Roster(ctx, classID)
	if err != nil {
		return nil, err
	}

	for _, entry := range roster {
		entry.ScorePercent = ScorePercentage(entry.Score, class.PossibleScores)
		entry.AttendancePercent = AttendancePercentage(entry.SessionsAttended, class.TotalSessionsPlanned)
	}
	return roster, nil
}
