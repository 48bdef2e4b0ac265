package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/eventops/qr-checkin-api/internal/domain"
)

// AuthorizationStrategy decides whether an attendee may attend an
// event, and which active events they may attend at all. Permitted is
// called inside the check-in transaction with the attendee row
// locked, so a revocation racing the scan is never half-observed.
type AuthorizationStrategy interface {
	// Permitted reports whether the attendee may attend the event.
	Permitted(ctx context.Context, q Querier, attendee *domain.Attendee, event *domain.Event) (bool, error)

	// PermittedActiveEvents lists the active events the attendee may
	// attend, ordered by start time ascending with undated events last.
	PermittedActiveEvents(ctx context.Context, q Querier, attendee *domain.Attendee) ([]domain.Event, error)
}

// RelationAuthorization reads the explicit attendee_events relation.
// This is the provisioned source of truth and the default mode.
type RelationAuthorization struct{}

// NewRelationAuthorization creates the relation-backed strategy
func NewRelationAuthorization() *RelationAuthorization {
	return &RelationAuthorization{}
}

func (a *RelationAuthorization) Permitted(ctx context.Context, q Querier, attendee *domain.Attendee, event *domain.Event) (bool, error) {
	query := `
		SELECT permitted
		FROM attendee_events
		WHERE attendee_id = $1 AND event_id = $2
	`

	var permitted bool
	err := q.QueryRow(ctx, query, attendee.ID, event.ID).Scan(&permitted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read authorization: %w", err)
	}
	return permitted, nil
}

func (a *RelationAuthorization) PermittedActiveEvents(ctx context.Context, q Querier, attendee *domain.Attendee) ([]domain.Event, error) {
	query := `
		SELECT e.id, e.code, e.name, e.starts_at, e.ends_at, e.location, e.active
		FROM events e
		JOIN attendee_events ae ON ae.event_id = e.id
		WHERE ae.attendee_id = $1 AND ae.permitted AND e.active
		ORDER BY e.starts_at ASC NULLS LAST, e.id ASC
	`

	rows, err := q.Query(ctx, query, attendee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permitted events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LegacyFlagsAuthorization derives authorization from the attendee's
// free-text registration descriptor, the way imported spreadsheets
// recorded it before the attendee_events relation existed. An event
// is permitted when its code or name appears in the descriptor,
// compared case-insensitively on normalized tokens. Kept as a named
// mode rather than merged into the relation check; configuration
// chooses one or the other.
type LegacyFlagsAuthorization struct{}

// NewLegacyFlagsAuthorization creates the free-text fallback strategy
func NewLegacyFlagsAuthorization() *LegacyFlagsAuthorization {
	return &LegacyFlagsAuthorization{}
}

func (a *LegacyFlagsAuthorization) Permitted(ctx context.Context, q Querier, attendee *domain.Attendee, event *domain.Event) (bool, error) {
	return legacyDescriptorMatches(attendee.RegisteredEvents, event), nil
}

func (a *LegacyFlagsAuthorization) PermittedActiveEvents(ctx context.Context, q Querier, attendee *domain.Attendee) ([]domain.Event, error) {
	query := `
		SELECT id, code, name, starts_at, ends_at, location, active
		FROM events
		WHERE active
		ORDER BY starts_at ASC NULLS LAST, id ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active events: %w", err)
	}
	defer rows.Close()

	all, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	permitted := make([]domain.Event, 0, len(all))
	for _, e := range all {
		if legacyDescriptorMatches(attendee.RegisteredEvents, &e) {
			permitted = append(permitted, e)
		}
	}
	return permitted, nil
}

// legacyDescriptorMatches reports whether the descriptor mentions the
// event. The descriptor is a comma-separated list of badge labels
// ("CUMBRE, DIGI AMERICAS (DESAYUNO)"); a token matches when it
// contains the event code or the event name contains the token.
func legacyDescriptorMatches(descriptor string, event *domain.Event) bool {
	if descriptor == "" {
		return false
	}
	code := strings.ToUpper(strings.TrimSpace(event.Code))
	name := strings.ToUpper(strings.TrimSpace(event.Name))
	for _, token := range strings.Split(descriptor, ",") {
		token = strings.ToUpper(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		if code != "" && strings.Contains(token, code) {
			return true
		}
		if name != "" && (strings.Contains(token, name) || strings.Contains(name, token)) {
			return true
		}
	}
	return false
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	events := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		var location *string
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.StartsAt, &e.EndsAt, &location, &e.Active); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Location = nullableString(location)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}
