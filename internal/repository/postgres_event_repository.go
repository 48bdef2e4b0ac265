package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", id))

	event, err := getEvent(ctx, r.pool, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// List retrieves events, optionally only active ones, in start order
func (r *PostgresEventRepository) List(ctx context.Context, activeOnly bool) ([]domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	span.SetAttributes(attribute.Bool("active_only", activeOnly))

	query := `
		SELECT id, code, name, starts_at, ends_at, location, active
		FROM events
		WHERE ($1::bool IS FALSE OR active)
		ORDER BY starts_at ASC NULLS LAST, id ASC
	`

	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// getEvent reads one event through any Querier, so the check-in
// transaction can reuse it against its open tx.
func getEvent(ctx context.Context, q Querier, id int64) (*domain.Event, error) {
	query := `
		SELECT id, code, name, starts_at, ends_at, location, active
		FROM events
		WHERE id = $1
	`

	var e domain.Event
	var location *string
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Code, &e.Name, &e.StartsAt, &e.EndsAt, &location, &e.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	e.Location = nullableString(location)
	return &e, nil
}
