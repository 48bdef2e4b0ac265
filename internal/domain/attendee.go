package domain

import (
	"time"
)

// Attendee represents a registered person eligible to attend events.
// Rows are created by an external import process; the only field this
// service ever writes is a missing QR code.
type Attendee struct {
	ID               int64     `json:"id"`
	QRCode           string    `json:"qr_code,omitempty"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Organization     string    `json:"organization,omitempty"`
	OrgType          string    `json:"org_type,omitempty"`
	Country          string    `json:"country,omitempty"`
	Active           bool      `json:"active"`
	RegisteredEvents string    `json:"registered_events,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AttendeeFilter narrows directory listings
type AttendeeFilter struct {
	ActiveOnly bool
	Query      string
}

// Page bounds a directory listing
type Page struct {
	Limit  int
	Offset int
}

// Directory paging limits
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 5000
)

// Clamp normalizes the page to the hard limits so paginated
// results stay bounded regardless of caller input.
func (p Page) Clamp() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
