package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/eventops/qr-checkin-api/internal/domain"
)

// Querier is the subset of pgx executable by both a pool and an open
// transaction. Authorization strategies run against it so the same
// check works inside the check-in transaction and on the read path.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AttendeeRepository defines read and maintenance operations on the
// attendee directory.
type AttendeeRepository interface {
	// GetByIdentifier resolves an attendee by exact QR code or email
	// match. Case-sensitive; no fuzzy matching.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Attendee, error)

	// GetByName resolves an attendee by exact display name. This is
	// the lower-confidence fallback for legacy badges that carry no
	// code or email; callers must surface the weaker match.
	GetByName(ctx context.Context, name string) (*domain.Attendee, error)

	// List returns a stable, name-ordered page of the directory.
	List(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error)

	// EnsureQRCodes assigns a fresh unique code to every attendee
	// lacking one and reports how many rows were updated. Safe to
	// re-run and safe under overlapping runs.
	EnsureQRCodes(ctx context.Context, onlyActive bool) (int, error)
}

// EventRepository defines read access to the event catalog.
type EventRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Event, error)

	// List returns the catalog in start order for scanner UIs to pick
	// an event from.
	List(ctx context.Context, activeOnly bool) ([]domain.Event, error)
}

// CheckInParams carries one scan into the check-in transaction.
type CheckInParams struct {
	Identifier string
	EventID    int64
	Gate       string
}

// CheckinRepository owns the creation of check-in records. CheckIn is
// the only write path in the service.
type CheckinRepository interface {
	CheckIn(ctx context.Context, params CheckInParams) (*domain.CheckinResult, error)
}

// nullableString converts a pointer scan target to a plain value.
func nullableString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
