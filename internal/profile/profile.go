// Package profile is the signed-in customer's bookings page: bookings grouped
// into status tabs, cancellation and calendar downloads.
package profile

import (
	"context"
	"errors"
	"fmt"

	"hikari/internal/api"
	"hikari/internal/models"

	"github.com/rs/zerolog"
)

const msgCancelFailed = "Failed to cancel."

var (
	ErrUnknownBooking = errors.New("booking not found, reload bookings")
	ErrNotCancellable = errors.New("this booking can no longer be canceled")
	ErrNotLoaded      = errors.New("bookings are not loaded")
)

// Backend is the part of the REST API the profile page uses.
type Backend interface {
	MyBookingsByStatus(ctx context.Context) (*models.BookingsByStatus, error)
	CancelMyBooking(ctx context.Context, id int64) error
	MyBookingICal(ctx context.Context, id int64) ([]byte, error)
}

// Tab is one status group of the bookings list.
type Tab struct {
	Status   models.Status
	Label    string
	Count    int
	Bookings []models.Booking
}

// CancelError carries the server's reason for refusing a cancellation.
type CancelError struct {
	Message string
	Err     error
}

func (e *CancelError) Error() string { return e.Message }

func (e *CancelError) Unwrap() error { return e.Err }

// Page holds the last loaded tabs.
type Page struct {
	backend Backend
	logger  *zerolog.Logger

	tabs   []Tab
	byID   map[int64]models.Booking
	loaded bool
}

func NewPage(backend Backend, logger *zerolog.Logger) *Page {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Page{backend: backend, logger: logger, byID: make(map[int64]models.Booking)}
}

// Load fetches the bookings and builds one tab per status in display order.
// Statuses missing from the response produce empty tabs with a zero count.
func (p *Page) Load(ctx context.Context) ([]Tab, error) {
	resp, err := p.backend.MyBookingsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	tabs := make([]Tab, 0, len(models.StatusOrder))
	byID := make(map[int64]models.Booking)
	for _, s := range models.StatusOrder {
		list := resp.ByStatus[s]
		tabs = append(tabs, Tab{
			Status:   s,
			Label:    s.Label(),
			Count:    resp.Counts[s],
			Bookings: list,
		})
		for _, b := range list {
			byID[b.ID] = b
		}
	}

	p.tabs = tabs
	p.byID = byID
	p.loaded = true
	p.logger.Debug().Int("bookings", len(byID)).Msg("bookings loaded")
	return tabs, nil
}

// Tabs returns the last loaded tabs.
func (p *Page) Tabs() []Tab {
	return p.tabs
}

// ActiveTab is the first status with bookings, or pending when all are empty.
func (p *Page) ActiveTab() models.Status {
	for _, t := range p.tabs {
		if len(t.Bookings) > 0 {
			return t.Status
		}
	}
	return models.StatusPending
}

// CanCancel reports whether the cancel action is offered for b.
func CanCancel(b models.Booking) bool {
	return b.Status.Cancellable()
}

// Cancel cancels a loaded booking and reloads the tabs. Bookings past the
// cancellable statuses are refused without a request.
func (p *Page) Cancel(ctx context.Context, id int64) error {
	if !p.loaded {
		return ErrNotLoaded
	}
	b, ok := p.byID[id]
	if !ok {
		return ErrUnknownBooking
	}
	if !CanCancel(b) {
		return ErrNotCancellable
	}

	if err := p.backend.CancelMyBooking(ctx, id); err != nil {
		msg := msgCancelFailed
		if apiErr, ok := api.AsError(err); ok && apiErr.Detail != "" {
			msg = apiErr.Detail
		}
		p.logger.Warn().Err(err).Int64("booking_id", id).Msg("cancel failed")
		return &CancelError{Message: msg, Err: err}
	}

	p.logger.Info().Int64("booking_id", id).Msg("booking canceled")
	if _, err := p.Load(ctx); err != nil {
		return err
	}
	return nil
}

// ICal downloads the calendar file of a booking.
func (p *Page) ICal(ctx context.Context, id int64) ([]byte, error) {
	data, err := p.backend.MyBookingICal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("download calendar: %w", err)
	}
	return data, nil
}
