// Package reservation drives the booking page: table map, availability search,
// and the member and guest booking submissions.
//
// A Page is the explicit state object of one page session. It is meant to be
// driven by a single event loop and is not safe for concurrent use.
package reservation

import (
	"context"
	"fmt"
	"time"

	"hikari/internal/api"
	"hikari/internal/events"
	"hikari/internal/metrics"
	"hikari/internal/models"
	"hikari/internal/tablemap"

	"github.com/rs/zerolog"
)

const (
	flowMember = "member"
	flowGuest  = "guest"
)

// Backend is the part of the REST API the page talks to.
type Backend interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	GetAvailability(ctx context.Context, criteria models.SearchCriteria) (*models.AvailabilityResponse, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	CreateGuestBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
}

// EventPublisher receives page events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Options configure a Page.
type Options struct {
	// Authenticated is the server-rendered session flag that picks the member flow.
	Authenticated   bool
	MaxOnlineGuests int
	// Fallback supplies the bundled layout when the backend list fails or is empty.
	Fallback func() ([]models.Table, error)
}

// Outcome is the result of Reserve: either a confirmed member booking or an opened guest form.
type Outcome struct {
	Confirmation *Confirmation
	Guest        *GuestForm
}

// Page holds the state of one booking page.
type Page struct {
	backend Backend
	events  EventPublisher
	logger  *zerolog.Logger

	tables        *tablemap.Map
	search        models.SearchCriteria
	authenticated bool
	maxGuests     int
	fallback      func() ([]models.Table, error)

	until map[int64]string
	state State
	guest *GuestForm
}

// NewPage constructs a page. events may be nil.
func NewPage(backend Backend, publisher EventPublisher, opts Options, logger *zerolog.Logger) *Page {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if opts.MaxOnlineGuests <= 0 {
		opts.MaxOnlineGuests = models.MaxOnlineGuests
	}
	if opts.Fallback == nil {
		opts.Fallback = tablemap.LoadFallback
	}

	p := &Page{
		backend:       backend,
		events:        publisher,
		logger:        logger,
		tables:        tablemap.New(),
		authenticated: opts.Authenticated,
		maxGuests:     opts.MaxOnlineGuests,
		fallback:      opts.Fallback,
		until:         make(map[int64]string),
	}
	p.guest = newGuestForm(p)
	return p
}

// Load fetches the table layout and renders it. A failed or empty backend response
// silently falls back to the bundled layout.
func (p *Page) Load(ctx context.Context) error {
	tables, err := p.backend.ListTables(ctx)
	switch {
	case err != nil:
		p.logger.Warn().Err(err).Msg("table list unavailable, using bundled layout")
		tables = nil
	case len(tables) == 0:
		p.logger.Warn().Msg("table list empty, using bundled layout")
	}

	if len(tables) > 0 {
		renderErr := p.tables.Render(tables)
		if renderErr == nil {
			p.resetAfterRender()
			return nil
		}
		p.logger.Warn().Err(renderErr).Msg("backend table list rejected, using bundled layout")
	}

	fallback, err := p.fallback()
	if err != nil {
		return fmt.Errorf("load bundled layout: %w", err)
	}
	metrics.IncTablesFallback()
	if err := p.tables.Render(fallback); err != nil {
		return err
	}
	p.resetAfterRender()
	return nil
}

func (p *Page) resetAfterRender() {
	p.until = make(map[int64]string)
	p.logger.Debug().Int("tables", p.tables.Len()).Msg("table map rendered")
}

// SetAuthenticated switches between the member and guest flows, e.g. after login.
func (p *Page) SetAuthenticated(v bool) {
	p.authenticated = v
}

// Authenticated reports which booking flow Reserve takes.
func (p *Page) Authenticated() bool {
	return p.authenticated
}

// Nodes returns the rendered tables in order.
func (p *Page) Nodes() []tablemap.Node {
	return p.tables.Nodes()
}

// AvailableUntil returns the "HH:MM" end of the free window reported by the last search.
func (p *Page) AvailableUntil(id int64) string {
	return p.until[id]
}

// Search returns the current search form values.
func (p *Page) Search() models.SearchCriteria {
	return p.search
}

// SetSearch updates the search form without querying availability.
func (p *Page) SetSearch(c models.SearchCriteria) {
	p.search = c
}

// Selected returns the selected table id.
func (p *Page) Selected() (int64, bool) {
	return p.tables.Selected()
}

// CanReserve reports whether the reserve action may fire.
func (p *Page) CanReserve() bool {
	_, selected := p.tables.Selected()
	return selected && p.search.Complete() && p.search.Guests <= p.maxGuests
}

// SubmitState is the state of the last member submission.
func (p *Page) SubmitState() State {
	return p.state
}

// Guest returns the guest details form.
func (p *Page) Guest() *GuestForm {
	return p.guest
}

// Select toggles the selection of a table.
func (p *Page) Select(id int64) (bool, error) {
	selected, err := p.tables.Toggle(id)
	if err != nil {
		return false, err
	}
	payload := events.SelectionPayload{CanReserve: p.CanReserve()}
	if selected {
		payload.TableID = id
	}
	p.publish(events.EventTableSelected, payload)
	return selected, nil
}

// Check runs an availability search and updates the map. It reports whether a
// response was applied. Parties above the online limit get ErrTooManyGuests and
// no request is made; an incomplete form is ignored. Backend failures are logged
// and the map keeps its last state.
func (p *Page) Check(ctx context.Context, c models.SearchCriteria) (bool, error) {
	if c.Duration <= 0 {
		c.Duration = models.DefaultDurationMin
	}
	p.search = c

	if c.Guests > p.maxGuests {
		metrics.IncAvailability("rejected")
		return false, ErrTooManyGuests
	}
	if !c.Complete() {
		metrics.IncAvailability("incomplete")
		return false, nil
	}

	resp, err := p.backend.GetAvailability(ctx, c)
	if err != nil {
		metrics.IncAvailability("error")
		p.logger.Warn().Err(err).
			Str("date", c.Date).
			Str("start", c.Start).
			Int("guests", c.Guests).
			Msg("availability check failed")
		return false, nil
	}

	usability := p.tables.ApplyAvailability(c.Guests, resp.Result())
	p.until = make(map[int64]string, len(resp.Tables))
	for _, t := range resp.Tables {
		if t.Available && t.AvailableUntil != "" {
			p.until[t.ID] = t.AvailableUntil
		}
	}
	metrics.IncAvailability("ok")

	p.publish(events.EventAvailabilityUpdated, events.AvailabilityPayload{
		Date:          c.Date,
		Start:         c.Start,
		Guests:        c.Guests,
		Enabled:       usability.Enabled,
		Disabled:      usability.Disabled,
		SelectionLost: usability.SelectionLost,
	})
	return true, nil
}

// Reserve handles the reserve action. Signed-in sessions book directly; guests get
// the details form opened and pre-filled, and nothing is sent yet.
func (p *Page) Reserve(ctx context.Context) (*Outcome, error) {
	id, ok := p.tables.Selected()
	if !ok || !p.CanReserve() {
		return nil, ErrCannotReserve
	}

	if !p.authenticated {
		p.guest.Open(p.pendingDetails(id))
		d := p.guest.Details()
		p.publish(events.EventGuestDetailsRequested, events.GuestDetailsPayload{
			Date:      d.Date,
			Start:     d.Start,
			Guests:    d.Guests,
			Duration:  d.Duration,
			TableID:   d.TableID,
			TableName: d.TableName,
		})
		return &Outcome{Guest: p.guest}, nil
	}

	if p.state == StateSubmitting {
		return nil, ErrSubmitting
	}

	req := models.BookingRequest{
		Date:        p.search.Date,
		Start:       p.search.Start,
		DurationMin: p.search.DurationOrDefault(),
		Guests:      p.search.Guests,
		TableID:     id,
	}

	p.state = StateSubmitting
	started := time.Now()
	res, err := p.backend.CreateBooking(ctx, req)
	if err != nil {
		p.state = StateFailed
		bErr := &BookingError{Message: firstFieldMessage(err), Err: err}
		metrics.IncBooking(flowMember, "failed")
		p.logger.Warn().Err(err).Int64("table_id", id).Msg("booking failed")
		p.publishBooking(events.EventBookingFailed, flowMember, req, nil, bErr.Message)
		return nil, bErr
	}

	p.state = StateSuccess
	node, _ := p.tables.Node(id)
	conf := confirmationFrom(req, res, node.Table.Name)
	p.tables.ClearSelection()

	metrics.IncBooking(flowMember, "success")
	p.logger.Info().
		Int64("booking_id", res.ID).
		Int64("table_id", id).
		Dur("took", time.Since(started)).
		Msg("booking created")
	p.publishBooking(events.EventBookingCreated, flowMember, req, res, "")
	return &Outcome{Confirmation: conf}, nil
}

func (p *Page) pendingDetails(id int64) GuestDetails {
	node, _ := p.tables.Node(id)
	return GuestDetails{
		Date:      p.search.Date,
		Start:     p.search.Start,
		Guests:    p.search.Guests,
		Duration:  p.search.DurationOrDefault(),
		TableID:   id,
		TableName: tableLabel(node.Table.Name, id),
	}
}

func (p *Page) publish(eventType string, payload interface{}) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishJSON(eventType, payload); err != nil {
		p.logger.Warn().Err(err).Str("event", eventType).Msg("event handler failed")
	}
}

func (p *Page) publishBooking(eventType, flow string, req models.BookingRequest, res *models.Booking, msg string) {
	payload := events.BookingPayload{
		Flow:    flow,
		TableID: req.TableID,
		Date:    req.Date,
		Start:   req.Start,
		Guests:  req.Guests,
		Error:   msg,
	}
	if res != nil {
		payload.BookingID = res.ID
	}
	p.publish(eventType, payload)
}

// firstFieldMessage is the member flow's error text: the first field error, the
// detail, or the generic message.
func firstFieldMessage(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.FirstMessage(models.MsgBookingFailed)
	}
	return models.MsgBookingFailed
}

// joinedMessage is the guest flow's error text: the detail, every field error, or
// the generic message.
func joinedMessage(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.JoinedMessage(models.MsgBookingFailed)
	}
	return models.MsgBookingFailed
}
