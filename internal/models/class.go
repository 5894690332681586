package models

import (
	"time"

	"github.com/google/uuid"
)

type Class struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	InstructorID uuid.UUID `json:"instructor_id"`
	// TotalSessionsPlanned counts every session ever started for the class;
	// PossibleScores grows by one attendance point per started session. Both
	// are mutated only by the session lifecycle service.
	TotalSessionsPlanned int       `json:"total_sessions_planned"`
	PossibleScores       int       `json:"possible_scores"`
	CreatedAt            time.Time `json:"created_at"`
}

type Enrollment struct {
	ID               uuid.UUID `json:"id"`
	StudentID        uuid.UUID `json:"student_id"`
	ClassID          uuid.UUID `json:"class_id"`
	SessionsAttended int       `json:"sessions_attended"`
	Score            int       `json:"score"`
	IsTA             bool      `json:"is_ta"`
	CreatedAt        time.Time `json:"created_at"`
}

// RosterEntry is one student row on the professor's class roster, with the
// derived percentage columns already computed.
type RosterEntry struct {
	StudentID         uuid.UUID `json:"student_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	SessionsAttended  int       `json:"sessions_attended"`
	Score             int       `json:"score"`
	IsTA              bool      `json:"is_ta"`
	ScorePercent      float64   `json:"score_percent"`
	AttendancePercent float64   `json:"attendance_percent"`
}

type CreateClassRequest struct {
	Title string `json:"title"`
}
