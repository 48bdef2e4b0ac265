package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventops/qr-checkin-api/internal/dto"
	"github.com/eventops/qr-checkin-api/internal/service"
	"github.com/eventops/qr-checkin-api/pkg/response"
	"github.com/eventops/qr-checkin-api/pkg/telemetry"
)

// CheckinHandler handles scan HTTP requests
type CheckinHandler struct {
	checkinService service.CheckinService
}

// NewCheckinHandler creates a new check-in handler
func NewCheckinHandler(checkinService service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// Lookup handles POST /lookup
// Resolves a scanned QR payload to an attendee without writing anything.
func (h *CheckinHandler) Lookup(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.checkin.lookup")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "qr is required")
		return
	}

	result, err := h.checkinService.Lookup(ctx, req.QR)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(
		attribute.Int64("attendee_id", result.Attendee.ID),
		attribute.Int("event_count", len(result.Events)),
	)
	span.SetStatus(codes.Ok, "")

	c.JSON(http.StatusOK, dto.LookupResponse{
		OK:         true,
		Attendee:   dto.AttendeeFromDomain(result.Attendee),
		Events:     dto.EventsFromDomain(result.Events),
		MatchedBy:  result.MatchedBy,
		Parsed:     &result.Payload,
		Registered: result.Payload.Events,
	})
}

// CheckIn handles POST /checkin
// Records presence at an event; repeat scans return the original record.
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.checkin.check_in")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "qr and event_id are required")
		return
	}

	span.SetAttributes(
		attribute.Int64("event_id", req.EventID),
		attribute.String("gate", req.Gate),
	)

	result, err := h.checkinService.CheckIn(ctx, req.QR, req.EventID, req.Gate)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("status", string(result.Status)))
	span.SetStatus(codes.Ok, "")

	c.JSON(http.StatusOK, dto.CheckinResponse{
		OK:        true,
		Status:    string(result.Status),
		ScannedAt: result.ScannedAt,
	})
}
