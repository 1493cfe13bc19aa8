package reservation

import (
	"context"
	"strconv"
	"strings"

	"hikari/internal/events"
	"hikari/internal/metrics"
	"hikari/internal/models"
)

// GuestDetails is the pending selection the guest form is opened with.
type GuestDetails struct {
	Date      string
	Start     string
	Guests    int
	Duration  int
	TableID   int64
	TableName string
}

// Contact is what the guest types into the form.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Comment string
}

// GuestForm collects contact details for sessions without an account and
// performs the booking request for them.
type GuestForm struct {
	page *Page

	open    bool
	details GuestDetails
	contact Contact
	state   State
	errMsg  string
}

func newGuestForm(p *Page) *GuestForm {
	return &GuestForm{page: p}
}

// Open resets the form, pre-fills it and shows it.
func (f *GuestForm) Open(d GuestDetails) {
	f.reset()
	f.details = d
	f.open = true
}

// Close hides the form without clearing what was typed.
func (f *GuestForm) Close() {
	f.open = false
}

func (f *GuestForm) reset() {
	f.details = GuestDetails{}
	f.contact = Contact{}
	f.state = StateIdle
	f.errMsg = ""
}

func (f *GuestForm) IsOpen() bool          { return f.open }
func (f *GuestForm) Details() GuestDetails { return f.details }
func (f *GuestForm) Contact() Contact      { return f.contact }
func (f *GuestForm) State() State          { return f.state }

// Error is the inline error currently shown in the form, or "".
func (f *GuestForm) Error() string { return f.errMsg }

// SetContact replaces the typed contact fields.
func (f *GuestForm) SetContact(c Contact) {
	f.contact = c
}

// Summary lists the pre-filled booking details shown above the form.
func (f *GuestForm) Summary() []string {
	d := f.details
	return []string{
		"Date: " + d.Date,
		"Time: " + d.Start,
		"Guests: " + strconv.Itoa(d.Guests),
		"Table: " + tableLabel(d.TableName, d.TableID),
	}
}

// Submit validates the contact fields and posts the booking. Validation failures
// never reach the network. On success the form closes and resets; on failure it
// stays open with the server message so the guest can correct and resubmit.
func (f *GuestForm) Submit(ctx context.Context) (*Confirmation, error) {
	if !f.open {
		return nil, ErrFormClosed
	}
	if f.state == StateSubmitting {
		return nil, ErrSubmitting
	}
	f.errMsg = ""

	c := Contact{
		Name:    strings.TrimSpace(f.contact.Name),
		Email:   strings.TrimSpace(f.contact.Email),
		Phone:   strings.TrimSpace(f.contact.Phone),
		Comment: strings.TrimSpace(f.contact.Comment),
	}
	if c.Name == "" {
		return nil, f.invalid(models.MsgNameRequired)
	}
	if c.Email == "" && c.Phone == "" {
		return nil, f.invalid(models.MsgContactRequired)
	}

	d := f.details
	duration := d.Duration
	if duration <= 0 {
		duration = models.DefaultDurationMin
	}
	req := models.BookingRequest{
		Date:        d.Date,
		Start:       d.Start,
		DurationMin: duration,
		Guests:      d.Guests,
		TableID:     d.TableID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Comment:     c.Comment,
	}

	p := f.page
	f.state = StateSubmitting
	res, err := p.backend.CreateGuestBooking(ctx, req)
	if err != nil {
		f.state = StateFailed
		f.errMsg = joinedMessage(err)
		metrics.IncBooking(flowGuest, "failed")
		p.logger.Warn().Err(err).Int64("table_id", req.TableID).Msg("guest booking failed")
		p.publishBooking(events.EventBookingFailed, flowGuest, req, nil, f.errMsg)
		return nil, &BookingError{Message: f.errMsg, Err: err}
	}

	conf := confirmationFrom(req, res, d.TableName)
	conf.Name = c.Name
	conf.Email = c.Email
	conf.Phone = c.Phone

	f.open = false
	f.reset()
	f.state = StateSuccess
	if sel, ok := p.tables.Selected(); ok && sel == req.TableID {
		p.tables.ClearSelection()
	}

	metrics.IncBooking(flowGuest, "success")
	p.logger.Info().Int64("booking_id", res.ID).Int64("table_id", req.TableID).Msg("guest booking created")
	p.publishBooking(events.EventBookingCreated, flowGuest, req, res, "")
	return conf, nil
}

func (f *GuestForm) invalid(msg string) error {
	f.errMsg = msg
	metrics.IncBooking(flowGuest, "invalid")
	return &ValidationError{Message: msg}
}
