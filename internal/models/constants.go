package models

const (
	// MaxOnlineGuests is the largest party accepted through online booking.
	MaxOnlineGuests = 6
	// DefaultDurationMin is the visit length used when the search form leaves it empty.
	DefaultDurationMin = 90
	// DefaultCapacity is applied to table records that come without a capacity.
	DefaultCapacity = 4
)

const (
	CSRFCookieName  = "csrftoken"
	CSRFHeader      = "X-CSRFToken"
	RequestIDHeader = "X-Request-ID"
)

const (
	MsgTooManyGuests   = "Online we accept up to 6 guests. For larger groups, please call the restaurant."
	MsgBookingFailed   = "Booking failed"
	MsgNameRequired    = "Please enter your name"
	MsgContactRequired = "Please provide email or phone"
	MsgPendingStatus   = "pending confirmation"
)
