package domain

import (
	"time"
)

// CheckinStatus reports how a scan was resolved
type CheckinStatus string

const (
	// StatusCheckedIn means this scan created the check-in record
	StatusCheckedIn CheckinStatus = "checked_in"
	// StatusAlreadyCheckedIn means a record already existed; the call is a no-op
	StatusAlreadyCheckedIn CheckinStatus = "already_checked_in"
)

// Checkin is the durable record that an attendee was scanned as
// present at an event. At most one row exists per (attendee, event)
// pair; the row is never updated or deleted.
type Checkin struct {
	ID         int64     `json:"id"`
	AttendeeID int64     `json:"attendee_id"`
	EventID    int64     `json:"event_id"`
	Gate       string    `json:"gate,omitempty"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// CheckinResult is the outcome of a check-in transaction. ScannedAt
// carries the original timestamp on repeat scans.
type CheckinResult struct {
	Status    CheckinStatus `json:"status"`
	Attendee  *Attendee     `json:"attendee,omitempty"`
	ScannedAt time.Time     `json:"scanned_at"`
}
