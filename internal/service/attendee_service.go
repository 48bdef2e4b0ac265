package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/internal/repository"
	"github.com/eventops/qr-checkin-api/pkg/telemetry"
)

// AttendeeService defines directory operations over the attendee roster
type AttendeeService interface {
	// List returns attendees matching the filter, most-stable order.
	List(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error)

	// EnsureQRCodes assigns a QR code to every attendee missing one
	// and returns how many were assigned.
	EnsureQRCodes(ctx context.Context, onlyActive bool) (int, error)
}

type attendeeService struct {
	attendeeRepo repository.AttendeeRepository
}

// NewAttendeeService creates a new attendee service
func NewAttendeeService(attendeeRepo repository.AttendeeRepository) AttendeeService {
	return &attendeeService{attendeeRepo: attendeeRepo}
}

func (s *attendeeService) List(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.attendee.list")
	defer span.End()

	page = page.Clamp()
	span.SetAttributes(
		attribute.Int("limit", page.Limit),
		attribute.Int("offset", page.Offset),
		attribute.Bool("active_only", filter.ActiveOnly),
	)

	attendees, err := s.attendeeRepo.List(ctx, filter, page)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(attendees)))
	span.SetStatus(codes.Ok, "")
	return attendees, nil
}

func (s *attendeeService) EnsureQRCodes(ctx context.Context, onlyActive bool) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.attendee.ensure_qr_codes")
	defer span.End()

	assigned, err := s.attendeeRepo.EnsureQRCodes(ctx, onlyActive)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("assigned", assigned))
	span.SetStatus(codes.Ok, "")
	return assigned, nil
}
