package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSponsorNotFound     = errors.New("sponsor not found")
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrInvalidPackageTier  = errors.New("invalid package tier")
)

// SponsorService handles sponsor business logic
type SponsorService struct {
	sponsorRepo repository.SponsorRepository
	events      *EventService
	clock       clock.Clock
}

// NewSponsorService creates a new SponsorService. clk must report time in the
// reference timezone.
func NewSponsorService(sponsorRepo repository.SponsorRepository, events *EventService, clk clock.Clock) *SponsorService {
	return &SponsorService{
		sponsorRepo: sponsorRepo,
		events:      events,
		clock:       clk,
	}
}

// CreateSponsorInput represents input for creating a sponsor
type CreateSponsorInput struct {
	OrganizationID uint64
	EventID        uint64
	CompanyName    string
	ContactName    *string
	ContactEmail   *string
	PackageTier    *models.PackageTier
	ContractValue  *int64
	Notes          *string
}

// CreateSponsor creates a sponsor and provisions the deliverables of its package tier.
// A template is due DaysBeforeEvent before the event, or today when the event has no date.
func (s *SponsorService) CreateSponsor(ctx context.Context, input CreateSponsorInput) (*models.Sponsor, []models.Deliverable, error) {
	company := strings.TrimSpace(input.CompanyName)
	if company == "" {
		return nil, nil, ErrCompanyNameRequired
	}
	if input.PackageTier != nil && !input.PackageTier.Valid() {
		return nil, nil, ErrInvalidPackageTier
	}

	event, err := s.events.GetEvent(ctx, input.OrganizationID, input.EventID)
	if err != nil {
		return nil, nil, err
	}

	sponsor := &models.Sponsor{
		OrganizationID: input.OrganizationID,
		EventID:        event.ID,
		CompanyName:    company,
		ContactName:    input.ContactName,
		ContactEmail:   input.ContactEmail,
		PackageTier:    input.PackageTier,
		ContractValue:  input.ContractValue,
		Notes:          input.Notes,
	}

	var deliverables []models.Deliverable
	if input.PackageTier != nil {
		templates, err := s.sponsorRepo.ListTemplates(ctx, input.OrganizationID, *input.PackageTier)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load deliverable templates: %w", err)
		}

		today := models.DateOnly(s.clock.Now())
		for _, tmpl := range templates {
			due := today
			if event.EventDate != nil {
				due = models.DateOnly(*event.EventDate).AddDate(0, 0, -tmpl.DaysBeforeEvent)
			}
			deliverables = append(deliverables, models.Deliverable{
				Title:       tmpl.Title,
				Description: tmpl.Description,
				DueDate:     due,
				Status:      models.StatusPending,
				Priority:    tmpl.Priority,
			})
		}
	}

	if err := s.sponsorRepo.CreateWithDeliverables(ctx, sponsor, deliverables); err != nil {
		return nil, nil, fmt.Errorf("failed to create sponsor: %w", err)
	}
	sponsor.Event = event

	return sponsor, deliverables, nil
}

// ListSponsors lists an organization's sponsors, optionally for one event
func (s *SponsorService) ListSponsors(ctx context.Context, orgID uint64, eventID *uint64) ([]models.Sponsor, error) {
	sponsors, err := s.sponsorRepo.List(ctx, orgID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	return sponsors, nil
}

// GetSponsor returns a sponsor of the organization
func (s *SponsorService) GetSponsor(ctx context.Context, orgID, sponsorID uint64) (*models.Sponsor, error) {
	sponsor, err := s.sponsorRepo.FindByID(ctx, sponsorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSponsorNotFound
		}
		return nil, fmt.Errorf("failed to find sponsor: %w", err)
	}
	if sponsor.OrganizationID != orgID {
		return nil, ErrSponsorNotFound
	}
	return sponsor, nil
}
