package models

import "time"

// Status is a reservation status as the backend reports it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSeated    Status = "seated"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusNoShow    Status = "no_show"
)

// StatusOrder is the order statuses are shown in on the profile page.
var StatusOrder = []Status{
	StatusPending,
	StatusConfirmed,
	StatusSeated,
	StatusCompleted,
	StatusCanceled,
	StatusNoShow,
}

var statusLabels = map[Status]string{
	StatusPending:   "Waiting for confirmation",
	StatusConfirmed: "Confirmed",
	StatusSeated:    "Seated",
	StatusCompleted: "Completed",
	StatusCanceled:  "Canceled",
	StatusNoShow:    "No show",
}

// Label returns the display label, or the raw code for unknown statuses.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Cancellable reports whether a customer may still cancel.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// BookingRequest is the body posted to the booking endpoints.
type BookingRequest struct {
	Date        string `json:"date"`
	Start       string `json:"start"`
	DurationMin int    `json:"duration_min"`
	Guests      int    `json:"guests"`
	TableID     int64  `json:"table_id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// Booking is a reservation record returned by the backend.
type Booking struct {
	ID            int64     `json:"id"`
	Status        Status    `json:"status"`
	DatetimeStart time.Time `json:"datetime_start"`
	DatetimeEnd   time.Time `json:"datetime_end"`
	Guests        int       `json:"guests"`
	Table         TableRef  `json:"table"`
	TableName     string    `json:"table_name"`
	AreaID        int64     `json:"area_id,omitempty"`
	TableArea     string    `json:"table_area,omitempty"`
	Area          string    `json:"area,omitempty"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// AreaName returns whichever area field the endpoint filled.
func (b *Booking) AreaName() string {
	switch {
	case b.TableArea != "":
		return b.TableArea
	case b.Area != "":
		return b.Area
	}
	return b.Table.AreaName
}

// BookingsByStatus is the body of the customer bookings endpoint.
type BookingsByStatus struct {
	Counts   map[Status]int       `json:"counts"`
	ByStatus map[Status][]Booking `json:"by_status"`
}

// StatusChoice is one entry of the manager status list.
type StatusChoice struct {
	Code  Status `json:"code"`
	Label string `json:"label"`
}
