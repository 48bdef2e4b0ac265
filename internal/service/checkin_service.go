package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/internal/qr"
	"github.com/eventops/qr-checkin-api/internal/repository"
	"github.com/eventops/qr-checkin-api/pkg/telemetry"
)

// How a lookup resolved the attendee. Name matching is the weak path
// for legacy badges and is surfaced to the operator as such.
const (
	MatchedByIdentifier = "identifier"
	MatchedByName       = "name"
)

// LookupResult carries a resolved attendee and the events the store
// permits them to attend.
type LookupResult struct {
	Attendee  *domain.Attendee
	Events    []domain.Event
	Payload   qr.Payload
	MatchedBy string
}

// CheckinService defines the scan-facing business logic
type CheckinService interface {
	// Lookup resolves a scanned QR payload to an attendee and their
	// permitted active events. Read-only.
	Lookup(ctx context.Context, rawQR string) (*LookupResult, error)

	// CheckIn records presence at an event, at most once per
	// attendee/event pair. Safe to retry.
	CheckIn(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error)
}

type checkinService struct {
	attendeeRepo repository.AttendeeRepository
	checkinRepo  repository.CheckinRepository
	auth         repository.AuthorizationStrategy
	db           repository.Querier
}

// NewCheckinService creates a new check-in service
func NewCheckinService(
	attendeeRepo repository.AttendeeRepository,
	checkinRepo repository.CheckinRepository,
	auth repository.AuthorizationStrategy,
	db repository.Querier,
) CheckinService {
	return &checkinService{
		attendeeRepo: attendeeRepo,
		checkinRepo:  checkinRepo,
		auth:         auth,
		db:           db,
	}
}

func (s *checkinService) Lookup(ctx context.Context, rawQR string) (*LookupResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkin.lookup")
	defer span.End()

	payload, err := qr.Decode(rawQR)
	if err != nil {
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}

	attendee, matchedBy, err := s.resolve(ctx, payload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("attendee_id", attendee.ID),
		attribute.String("matched_by", matchedBy),
	)

	if !attendee.Active {
		span.SetStatus(codes.Error, "attendee inactive")
		return nil, domain.ErrAttendeeInactive
	}

	events, err := s.auth.PermittedActiveEvents(ctx, s.db, attendee)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &LookupResult{
		Attendee:  attendee,
		Events:    events,
		Payload:   payload,
		MatchedBy: matchedBy,
	}, nil
}

func (s *checkinService) CheckIn(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkin.check_in")
	defer span.End()

	if eventID <= 0 {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}

	payload, err := qr.Decode(rawQR)
	if err != nil {
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	// Check-in resolves strictly by identifier; the name fallback is
	// too weak to create durable records from.
	result, err := s.checkinRepo.CheckIn(ctx, repository.CheckInParams{
		Identifier: payload.Identifier(),
		EventID:    eventID,
		Gate:       gate,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("status", string(result.Status)))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// resolve finds the attendee for a payload: exact identifier match
// first, exact display-name match as the lower-confidence fallback.
func (s *checkinService) resolve(ctx context.Context, payload qr.Payload) (*domain.Attendee, string, error) {
	attendee, err := s.attendeeRepo.GetByIdentifier(ctx, payload.Identifier())
	if err == nil {
		return attendee, MatchedByIdentifier, nil
	}
	if !errors.Is(err, domain.ErrAttendeeNotFound) {
		return nil, "", err
	}

	if payload.Name != "" {
		attendee, nameErr := s.attendeeRepo.GetByName(ctx, payload.Name)
		if nameErr == nil {
			return attendee, MatchedByName, nil
		}
		if !errors.Is(nameErr, domain.ErrAttendeeNotFound) {
			return nil, "", nameErr
		}
	}

	return nil, "", domain.ErrAttendeeNotFound
}
