package models

// SearchCriteria holds the search form values.
type SearchCriteria struct {
	Date     string `json:"date"`
	Start    string `json:"start"`
	Guests   int    `json:"guests"`
	Duration int    `json:"duration"`
}

// Complete reports whether date, start and a positive guest count are present.
func (c SearchCriteria) Complete() bool {
	return c.Date != "" && c.Start != "" && c.Guests > 0
}

// DurationOrDefault returns the visit length in minutes.
func (c SearchCriteria) DurationOrDefault() int {
	if c.Duration <= 0 {
		return DefaultDurationMin
	}
	return c.Duration
}

// OverOnlineLimit reports whether the party must book by phone.
func (c SearchCriteria) OverOnlineLimit() bool {
	return c.Guests > MaxOnlineGuests
}

// TableAvailability is one entry of the availability response.
type TableAvailability struct {
	ID             int64  `json:"id"`
	Name           string `json:"name,omitempty"`
	Capacity       int    `json:"capacity,omitempty"`
	Available      bool   `json:"available"`
	AvailableUntil string `json:"available_until,omitempty"`
}

// AvailabilityResponse is the body of the availability endpoint.
type AvailabilityResponse struct {
	Date     string              `json:"date"`
	Start    string              `json:"start"`
	Guests   int                 `json:"guests"`
	Duration *int                `json:"duration"`
	Tables   []TableAvailability `json:"tables"`
}

// AvailabilityResult maps table id to availability. Missing ids count as available.
type AvailabilityResult map[int64]bool

// Result builds the lookup map from the response.
func (r *AvailabilityResponse) Result() AvailabilityResult {
	out := make(AvailabilityResult)
	if r == nil {
		return out
	}
	for _, t := range r.Tables {
		out[t.ID] = t.Available
	}
	return out
}

// Available returns the listed flag, or true when the id is absent.
func (r AvailabilityResult) Available(id int64) bool {
	v, ok := r[id]
	if !ok {
		return true
	}
	return v
}
