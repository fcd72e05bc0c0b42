package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// ErrNotFound matches every not-found error of the service and its
// repositories.
var ErrNotFound = repository.ErrNotFound

var (
	ErrPrimaryUserNotFound = fmt.Errorf("primary user %w", ErrNotFound)
	ErrMemberNotFound      = fmt.Errorf("member user %w", ErrNotFound)
	ErrRoomNotFound        = repository.ErrRoomNotFound
	ErrBookingNotFound     = repository.ErrBookingNotFound
)

var (
	// ErrAccessDenied is a role or ownership violation.
	ErrAccessDenied = errors.New("access denied")
	// ErrCapacityExceeded means the attendee count is over the room limit.
	ErrCapacityExceeded = errors.New("room capacity exceeded")
	// ErrUnauthorized covers a bad credential pair or token.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrRoomUnavailable is raised only when overlapping bookings are
	// rejected by policy.
	ErrRoomUnavailable = fmt.Errorf("room already booked for that time: %w", repository.ErrConflict)
)

// ValidationError reports a malformed or missing request field.
type ValidationError = model.ValidationError

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
