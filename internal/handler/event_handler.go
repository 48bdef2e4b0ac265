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

// EventHandler handles event catalog HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /events
// Returns the catalog for scanner UIs; active=true narrows to open events.
func (h *EventHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			span.SetStatus(codes.Error, "invalid active flag")
			response.BadRequest(c, "active must be a boolean")
			return
		}
		activeOnly = parsed
	}

	events, err := h.eventService.List(ctx, activeOnly)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")

	c.JSON(http.StatusOK, dto.EventListResponse{
		OK:    true,
		Count: len(events),
		Data:  dto.EventsFromDomain(events),
	})
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "invalid event id")
		handleError(c, domain.ErrInvalidEventID)
		return
	}

	span.SetAttributes(attribute.Int64("event_id", id))

	event, err := h.eventService.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")

	events := dto.EventsFromDomain([]domain.Event{*event})
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": events[0]})
}
