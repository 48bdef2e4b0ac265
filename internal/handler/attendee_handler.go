package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/internal/dto"
	"github.com/eventops/qr-checkin-api/internal/service"
	"github.com/eventops/qr-checkin-api/pkg/response"
	"github.com/eventops/qr-checkin-api/pkg/telemetry"
)

// AttendeeHandler handles attendee directory HTTP requests
type AttendeeHandler struct {
	attendeeService service.AttendeeService
}

// NewAttendeeHandler creates a new attendee handler
func NewAttendeeHandler(attendeeService service.AttendeeService) *AttendeeHandler {
	return &AttendeeHandler{attendeeService: attendeeService}
}

// List handles GET /attendees
// Query params: active (bool), q (substring filter), limit, offset.
func (h *AttendeeHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.attendee.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	filter := domain.AttendeeFilter{
		Query: c.Query("q"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			span.SetStatus(codes.Error, "invalid active flag")
			response.BadRequest(c, "active must be a boolean")
			return
		}
		filter.ActiveOnly = active
	}

	page, err := parsePage(c)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	attendees, err := h.attendeeService.List(ctx, filter, page)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(attendees)))
	span.SetStatus(codes.Ok, "")

	c.JSON(http.StatusOK, dto.AttendeeListResponse{
		OK:    true,
		Count: len(attendees),
		Data:  dto.AttendeesFromDomain(attendees),
	})
}

// EnsureQR handles POST /attendees/ensure-qr
// Backfills a QR code for every attendee missing one.
func (h *AttendeeHandler) EnsureQR(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.attendee.ensure_qr")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	// Empty body means all attendees; the flag narrows to active ones.
	var req dto.EnsureQRRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid request")
			response.BadRequest(c, "invalid request body")
			return
		}
	}

	updated, err := h.attendeeService.EnsureQRCodes(ctx, req.OnlyActive)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("updated", updated))
	span.SetStatus(codes.Ok, "")

	c.JSON(http.StatusOK, dto.EnsureQRResponse{
		OK:      true,
		Updated: updated,
	})
}

func parsePage(c *gin.Context) (domain.Page, error) {
	var page domain.Page
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > domain.MaxPageLimit {
			return page, domain.ErrInvalidLimit
		}
		page.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return page, domain.ErrInvalidOffset
		}
		page.Offset = offset
	}
	return page, nil
}
