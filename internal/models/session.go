package models

import (
	"time"

	"github.com/google/uuid"
)

// ClassSession is one live meeting of a class. At most one session per class
// is active at any time; a session is closed by flipping is_active off and
// ended on, never deleted.
type ClassSession struct {
	ID        uuid.UUID  `json:"id"`
	ClassID   uuid.UUID  `json:"class_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	IsActive  bool       `json:"is_active"`
	Ended     bool       `json:"ended"`
}

// Attendance is the proof-of-check-in record; its existence per
// (session, student) is the at-most-once guard.
type Attendance struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	StudentID uuid.UUID `json:"student_id"`
	CheckedAt time.Time `json:"checked_at"`
}

type SessionStatus struct {
	Active    bool       `json:"active"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
}
