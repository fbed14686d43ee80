package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventNameMissing = errors.New("event name is required")
)

// EventService handles event business logic
type EventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// CreateEventInput represents input for creating an event
type CreateEventInput struct {
	OrganizationID uint64
	CreatedByID    uint64
	Name           string
	Description    *string
	EventDate      *time.Time
	Location       *string
}

// CreateEvent creates a new event in the planning state
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEventNameMissing
	}

	event := &models.Event{
		OrganizationID: input.OrganizationID,
		Name:           name,
		Description:    input.Description,
		Location:       input.Location,
		CreatedByID:    &input.CreatedByID,
	}
	if input.EventDate != nil {
		date := models.DateOnly(*input.EventDate)
		event.EventDate = &date
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// ListEvents lists an organization's events
func (s *EventService) ListEvents(ctx context.Context, orgID uint64) ([]models.Event, error) {
	events, err := s.eventRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetEvent returns an event of the organization
func (s *EventService) GetEvent(ctx context.Context, orgID, eventID uint64) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event.OrganizationID != orgID {
		return nil, ErrEventNotFound
	}
	return event, nil
}
