package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/pkg/telemetry"
)

// uniqueViolation is the PostgreSQL error code for a unique
// constraint violation.
const uniqueViolation = "23505"

// PostgresCheckinRepository implements CheckinRepository with one
// short transaction per scan. Correctness rests on the attendee row
// lock plus the UNIQUE (attendee_id, event_id) constraint on
// checkins, never on in-process state: the service may run as many
// independent processes against the same database.
type PostgresCheckinRepository struct {
	pool *pgxpool.Pool
	auth AuthorizationStrategy
}

// NewPostgresCheckinRepository creates a new PostgresCheckinRepository
func NewPostgresCheckinRepository(pool *pgxpool.Pool, auth AuthorizationStrategy) *PostgresCheckinRepository {
	return &PostgresCheckinRepository{pool: pool, auth: auth}
}

// CheckIn records a scan inside a single transaction:
//
//  1. lock the attendee row (serializes concurrent scans of the same
//     attendee; scans of different attendees never block each other)
//  2. verify the attendee is active and permitted for the event
//  3. return the existing record when one exists, insert otherwise
//
// Every exit path either commits or rolls back, so the pooled
// connection is always released and no partial state is observable.
func (r *PostgresCheckinRepository) CheckIn(ctx context.Context, params CheckInParams) (*domain.CheckinResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.checkin.check_in")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", params.EventID),
		attribute.String("gate", params.Gate),
	)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin check-in transaction: %w", err)
	}
	// Rollback after commit is a no-op; this covers every early return.
	defer tx.Rollback(ctx)

	attendee, err := lockAttendee(ctx, tx, params.Identifier)
	if err != nil {
		return nil, spanError(span, err)
	}
	span.SetAttributes(attribute.Int64("attendee_id", attendee.ID))

	if !attendee.Active {
		span.SetStatus(codes.Error, "attendee inactive")
		return nil, domain.ErrAttendeeInactive
	}

	// An unknown or inactive event is reported as not permitted, the
	// same as a missing authorization row, to avoid leaking which
	// event IDs exist.
	event, err := getEvent(ctx, tx, params.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			span.SetStatus(codes.Error, "event not found")
			return nil, domain.ErrNotPermitted
		}
		return nil, spanError(span, err)
	}
	if !event.Active {
		span.SetStatus(codes.Error, "event inactive")
		return nil, domain.ErrNotPermitted
	}

	permitted, err := r.auth.Permitted(ctx, tx, attendee, event)
	if err != nil {
		return nil, spanError(span, err)
	}
	if !permitted {
		span.SetStatus(codes.Error, "not permitted")
		return nil, domain.ErrNotPermitted
	}

	if scannedAt, found, err := existingCheckin(ctx, tx, attendee.ID, event.ID); err != nil {
		return nil, spanError(span, err)
	} else if found {
		if err := tx.Commit(ctx); err != nil {
			return nil, spanError(span, fmt.Errorf("failed to commit check-in transaction: %w", err))
		}
		span.SetAttributes(attribute.String("status", string(domain.StatusAlreadyCheckedIn)))
		span.SetStatus(codes.Ok, "")
		return &domain.CheckinResult{
			Status:    domain.StatusAlreadyCheckedIn,
			Attendee:  attendee,
			ScannedAt: scannedAt,
		}, nil
	}

	now := time.Now().UTC()
	insert := `
		INSERT INTO checkins (attendee_id, event_id, gate, scanned_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
	`
	if _, err := tx.Exec(ctx, insert, attendee.ID, event.ID, params.Gate, now); err != nil {
		// The unique constraint is the backstop for writers that did
		// not contend on the same attendee row (e.g. a code and an
		// email resolving to one attendee). The violation aborts the
		// transaction, so roll it back and re-read the winning record
		// on the pool; the winner has committed by the time its insert
		// conflicts with ours.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			_ = tx.Rollback(ctx)
			scannedAt, found, readErr := existingCheckin(ctx, r.pool, attendee.ID, event.ID)
			if readErr != nil || !found {
				return nil, spanError(span, fmt.Errorf("failed to re-read check-in after conflict: %w", err))
			}
			span.SetAttributes(attribute.String("status", string(domain.StatusAlreadyCheckedIn)))
			span.SetStatus(codes.Ok, "")
			return &domain.CheckinResult{
				Status:    domain.StatusAlreadyCheckedIn,
				Attendee:  attendee,
				ScannedAt: scannedAt,
			}, nil
		}
		return nil, spanError(span, fmt.Errorf("failed to insert check-in: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, spanError(span, fmt.Errorf("failed to commit check-in transaction: %w", err))
	}

	span.SetAttributes(attribute.String("status", string(domain.StatusCheckedIn)))
	span.SetStatus(codes.Ok, "")
	return &domain.CheckinResult{
		Status:    domain.StatusCheckedIn,
		Attendee:  attendee,
		ScannedAt: now,
	}, nil
}

// lockAttendee resolves the attendee by identifier and takes a
// row-level write-intent lock for the duration of the transaction.
func lockAttendee(ctx context.Context, tx pgx.Tx, identifier string) (*domain.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE qr_code = $1 OR email = $1
		FOR UPDATE
	`

	attendee, err := scanAttendee(tx.QueryRow(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("failed to lock attendee: %w", err)
	}
	return attendee, nil
}

// existingCheckin reports whether a record already exists for the
// pair, returning its original timestamp.
func existingCheckin(ctx context.Context, q Querier, attendeeID, eventID int64) (time.Time, bool, error) {
	query := `
		SELECT scanned_at FROM checkins
		WHERE attendee_id = $1 AND event_id = $2
	`

	var scannedAt time.Time
	err := q.QueryRow(ctx, query, attendeeID, eventID).Scan(&scannedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read existing check-in: %w", err)
	}
	return scannedAt, true, nil
}

// spanError records a failure on the span and passes it through.
func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
