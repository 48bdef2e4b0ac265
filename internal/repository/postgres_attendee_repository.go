package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/pkg/telemetry"
)

const attendeeColumns = `
	id, qr_code, email, full_name, organization, org_type, country,
	active, registered_events, created_at, updated_at
`

// PostgresAttendeeRepository implements AttendeeRepository using
// PostgreSQL with pgxpool
type PostgresAttendeeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAttendeeRepository creates a new PostgresAttendeeRepository
func NewPostgresAttendeeRepository(pool *pgxpool.Pool) *PostgresAttendeeRepository {
	return &PostgresAttendeeRepository{pool: pool}
}

// GetByIdentifier resolves an attendee by exact QR code or email match
func (r *PostgresAttendeeRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Attendee, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.attendee.get_by_identifier")
	defer span.End()

	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE qr_code = $1 OR email = $1
	`

	attendee, err := scanAttendee(r.pool.QueryRow(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrAttendeeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}

	span.SetAttributes(attribute.Int64("attendee_id", attendee.ID))
	span.SetStatus(codes.Ok, "")
	return attendee, nil
}

// GetByName resolves an attendee by exact display name. Ambiguous
// names (more than one row) resolve to nobody rather than guessing.
func (r *PostgresAttendeeRepository) GetByName(ctx context.Context, name string) (*domain.Attendee, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.attendee.get_by_name")
	defer span.End()

	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE full_name = $1
		LIMIT 2
	`

	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query attendees by name: %w", err)
	}
	defer rows.Close()

	attendees := []*domain.Attendee{}
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read attendees: %w", err)
	}

	if len(attendees) != 1 {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrAttendeeNotFound
	}

	span.SetStatus(codes.Ok, "")
	return attendees[0], nil
}

// List returns a stable, name-ordered page of the directory
func (r *PostgresAttendeeRepository) List(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.attendee.list")
	defer span.End()

	page = page.Clamp()
	span.SetAttributes(
		attribute.Int("limit", page.Limit),
		attribute.Int("offset", page.Offset),
		attribute.Bool("active_only", filter.ActiveOnly),
	)

	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE ($1::bool IS FALSE OR active)
		  AND ($2::text = '' OR full_name ILIKE '%' || $2 || '%'
		       OR email ILIKE '%' || $2 || '%'
		       OR organization ILIKE '%' || $2 || '%')
		ORDER BY full_name ASC NULLS LAST, id ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, filter.ActiveOnly, filter.Query, page.Limit, page.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	attendees := []domain.Attendee{}
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, *a)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read attendees: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return attendees, nil
}

// EnsureQRCodes assigns a fresh code to every attendee lacking one.
// Each row is updated with its own WHERE qr_code IS NULL guard, so
// overlapping maintenance runs never clobber an assigned code; the
// UNIQUE constraint on qr_code rules out duplicates.
func (r *PostgresAttendeeRepository) EnsureQRCodes(ctx context.Context, onlyActive bool) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.attendee.ensure_qr_codes")
	defer span.End()

	selectQuery := `
		SELECT id FROM attendees
		WHERE qr_code IS NULL AND ($1::bool IS FALSE OR active)
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, selectQuery, onlyActive)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to find attendees without qr code: %w", err)
	}

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, fmt.Errorf("failed to scan attendee id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to read attendee ids: %w", err)
	}

	updateQuery := `
		UPDATE attendees
		SET qr_code = $1, updated_at = $2
		WHERE id = $3 AND qr_code IS NULL
	`

	updated := 0
	for _, id := range ids {
		tag, err := r.pool.Exec(ctx, updateQuery, uuid.NewString(), time.Now().UTC(), id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return updated, fmt.Errorf("failed to assign qr code: %w", err)
		}
		updated += int(tag.RowsAffected())
	}

	span.SetAttributes(attribute.Int("updated", updated))
	span.SetStatus(codes.Ok, "")
	return updated, nil
}

// scanAttendee reads one attendee row from either a Row or Rows
func scanAttendee(row pgx.Row) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	var (
		qrCode           *string
		organization     *string
		orgType          *string
		country          *string
		registeredEvents *string
	)

	err := row.Scan(
		&a.ID,
		&qrCode,
		&a.Email,
		&a.FullName,
		&organization,
		&orgType,
		&country,
		&a.Active,
		&registeredEvents,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.QRCode = nullableString(qrCode)
	a.Organization = nullableString(organization)
	a.OrgType = nullableString(orgType)
	a.Country = nullableString(country)
	a.RegisteredEvents = nullableString(registeredEvents)
	return a, nil
}
