package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tigerengage-backend/internal/models"
	"tigerengage-backend/internal/repository"
)

// Capability checks shared by the lifecycle services. Roles are never trusted
// from the token alone; ownership and enrollment are checked against the
// store.

// requireInstructor loads the class and verifies the caller owns it.
func requireInstructor(ctx context.Context, classes *repository.ClassRepo, classID, userID uuid.UUID) (*models.Class, error) {
	class, err := classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Class not found"}
		}
		return nil, err
	}
	if class.InstructorID != userID {
		return nil, &ForbiddenError{Message: "Only the class instructor may do this"}
	}
	return class, nil
}

// requireEnrolled verifies the caller is an enrolled student of the class.
func requireEnrolled(ctx context.Context, enrollments *repository.EnrollmentRepo, studentID, classID uuid.UUID) (*models.Enrollment, error) {
	enrollment, err := enrollments.GetByStudentAndClass(ctx, studentID, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ForbiddenError{Message: "You are not enrolled in this class"}
		}
		return nil, err
	}
	return enrollment, nil
}

// requireParticipant admits the instructor or any enrolled student.
func requireParticipant(ctx context.Context, classes *repository.ClassRepo, enrollments *repository.EnrollmentRepo, classID, userID uuid.UUID) (*models.Class, error) {
	class, err := classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Class not found"}
		}
		return nil, err
	}
	if class.InstructorID == userID {
		return class, nil
	}
	enrolled, err := enrollments.IsEnrolled(ctx, userID, classID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, &ForbiddenError{Message: "You are not a participant of this class"}
	}
	return class, nil
}
