package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/dto"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/middleware"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// ListEvents returns the events of the caller's organization
func (h *EventHandler) ListEvents(c *gin.Context) {
	orgID, _ := middleware.GetOrganizationID(c)

	events, err := h.eventService.ListEvents(c.Request.Context(), orgID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": dto.ToEventDTOs(events),
	})
}

// CreateEvent creates an event in the caller's organization
func (h *EventHandler) CreateEvent(c *gin.Context) {
	profile, _ := middleware.GetProfile(c)

	type CreateEventRequest struct {
		Name        string  `json:"name" binding:"required,max=255"`
		Description *string `json:"description"`
		EventDate   *string `json:"event_date"`
		Location    *string `json:"location" binding:"omitempty,max=255"`
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	eventDate, err := dto.ParseOptionalDate(req.EventDate)
	if err != nil {
		apierrors.BadRequest(c, "event_date must be YYYY-MM-DD")
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), services.CreateEventInput{
		OrganizationID: *profile.OrganizationID,
		CreatedByID:    profile.ID,
		Name:           req.Name,
		Description:    req.Description,
		EventDate:      eventDate,
		Location:       req.Location,
	})
	if err != nil {
		if errors.Is(err, services.ErrEventNameMissing) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, dto.ToEventDTO(*event))
}
