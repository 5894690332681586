package services

import "github.com/google/uuid"

// Typed service errors. Handlers translate these to HTTP statuses; anything
// else is treated as an internal error.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// ConflictError reports an invariant violation avoided by rejecting the
// request. ConflictID, when set, identifies the entity blocking the request
// (e.g. the question that is already active) so the caller can resolve it;
// ConflictField names the response field it is reported under.
type ConflictError struct {
	Message       string
	ConflictID    uuid.UUID
	ConflictField string
}

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
