package dto

import (
	"time"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/internal/qr"
)

// LookupRequest represents a scan that only resolves the attendee
type LookupRequest struct {
	QR string `json:"qr" binding:"required"`
}

// CheckinRequest represents a scan that records presence at an event
type CheckinRequest struct {
	QR      string `json:"qr" binding:"required"`
	EventID int64  `json:"event_id" binding:"required"`
	Gate    string `json:"gate,omitempty"`
}

// AttendeeResponse represents an attendee in API responses
type AttendeeResponse struct {
	ID           int64  `json:"id"`
	QRCode       string `json:"qr_code,omitempty"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Organization string `json:"organization,omitempty"`
	OrgType      string `json:"org_type,omitempty"`
	Country      string `json:"country,omitempty"`
	Active       bool   `json:"active"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID       int64      `json:"id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	Location string     `json:"location,omitempty"`
}

// LookupResponse carries the resolved attendee plus the events the
// store says they may attend. Parsed and Registered echo what the QR
// itself claimed; they are display data, not authorization.
type LookupResponse struct {
	OK         bool              `json:"ok"`
	Attendee   *AttendeeResponse `json:"attendee"`
	Events     []EventResponse   `json:"events"`
	MatchedBy  string            `json:"matched_by"`
	Parsed     *qr.Payload       `json:"parsed,omitempty"`
	Registered []string          `json:"registered,omitempty"`
}

// CheckinResponse reports the outcome of a check-in scan
type CheckinResponse struct {
	OK        bool      `json:"ok"`
	Status    string    `json:"status"`
	ScannedAt time.Time `json:"scanned_at"`
}

// EnsureQRRequest represents a request to backfill missing QR codes
type EnsureQRRequest struct {
	OnlyActive bool `json:"only_active,omitempty"`
}

// EnsureQRResponse reports how many attendees received a code
type EnsureQRResponse struct {
	OK      bool `json:"ok"`
	Updated int  `json:"updated"`
}

// EventListResponse wraps the event catalog
type EventListResponse struct {
	OK    bool            `json:"ok"`
	Count int             `json:"count"`
	Data  []EventResponse `json:"data"`
}

// AttendeeListResponse wraps a directory page
type AttendeeListResponse struct {
	OK    bool               `json:"ok"`
	Count int                `json:"count"`
	Data  []AttendeeResponse `json:"data"`
}

// AttendeeFromDomain converts a domain Attendee to its API shape
func AttendeeFromDomain(a *domain.Attendee) *AttendeeResponse {
	if a == nil {
		return nil
	}
	return &AttendeeResponse{
		ID:           a.ID,
		QRCode:       a.QRCode,
		Email:        a.Email,
		FullName:     a.FullName,
		Organization: a.Organization,
		OrgType:      a.OrgType,
		Country:      a.Country,
		Active:       a.Active,
	}
}

// EventsFromDomain converts domain Events to their API shape
func EventsFromDomain(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:       e.ID,
			Code:     e.Code,
			Name:     e.Name,
			StartsAt: e.StartsAt,
			EndsAt:   e.EndsAt,
			Location: e.Location,
		})
	}
	return out
}

// AttendeesFromDomain converts a directory page to its API shape
func AttendeesFromDomain(attendees []domain.Attendee) []AttendeeResponse {
	out := make([]AttendeeResponse, 0, len(attendees))
	for i := range attendees {
		out = append(out, *AttendeeFromDomain(&attendees[i]))
	}
	return out
}
