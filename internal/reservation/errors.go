package reservation

import (
	"errors"

	"hikari/internal/models"
)

var (
	// ErrTooManyGuests rejects searches above the online party limit; call the restaurant instead.
	ErrTooManyGuests = errors.New("party too large for online booking")
	// ErrCannotReserve is returned when reserve is triggered without a selection or a complete search.
	ErrCannotReserve = errors.New("select a table and complete the search first")
	// ErrFormClosed is returned when the guest form is submitted while hidden.
	ErrFormClosed = errors.New("guest form is not open")
	// ErrSubmitting is returned when a submission is already in flight.
	ErrSubmitting = errors.New("booking is already being submitted")
)

// ValidationError is a local form error shown inline; no request was sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// BookingError is a failed booking submission. Message is what the user sees.
type BookingError struct {
	Message string
	Err     error
}

func (e *BookingError) Error() string { return e.Message }

func (e *BookingError) Unwrap() error { return e.Err }

// UserMessage returns the text to show for an error returned by the page.
func UserMessage(err error) string {
	var vErr *ValidationError
	var bErr *BookingError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTooManyGuests):
		return models.MsgTooManyGuests
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.As(err, &bErr):
		return bErr.Message
	}
	return err.Error()
}
