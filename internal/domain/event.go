package domain

import (
	"time"
)

// Event represents an event an attendee may be authorized for.
// Read-only from this service's perspective.
type Event struct {
	ID       int64      `json:"id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	Location string     `json:"location,omitempty"`
	Active   bool       `json:"active"`
}
