package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/risk"
	"gorm.io/gorm"
)

var (
	ErrDeliverableNotFound     = errors.New("deliverable not found")
	ErrTitleRequired           = errors.New("title is required")
	ErrTitleEmpty              = errors.New("title cannot be empty")
	ErrDueDateRequired         = errors.New("due date is required")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidPriority         = errors.New("invalid priority")
	ErrInvalidStatusTransition = errors.New("completed and cancelled deliverables cannot change status")
	ErrInvalidAssignee         = errors.New("assignee is not an active member of the organization")
	ErrAIServiceNotConfigured  = errors.New("AI service is not configured")
	ErrAINoDeliverables        = errors.New("AI did not generate any deliverables")
	ErrAINoValidDeliverables   = errors.New("no valid deliverables could be created from AI output")
)

// DeliverableService handles deliverable business logic
type DeliverableService struct {
	deliverableRepo repository.DeliverableRepository
	profileRepo     repository.ProfileRepository
	sponsors        *SponsorService
	aiService       *AIService
	clock           clock.Clock
}

// NewDeliverableService creates a new DeliverableService. clk must report time in
// the reference timezone so risk tiers agree with the reminder sweep.
func NewDeliverableService(
	deliverableRepo repository.DeliverableRepository,
	profileRepo repository.ProfileRepository,
	sponsors *SponsorService,
	aiService *AIService,
	clk clock.Clock,
) *DeliverableService {
	return &DeliverableService{
		deliverableRepo: deliverableRepo,
		profileRepo:     profileRepo,
		sponsors:        sponsors,
		aiService:       aiService,
		clock:           clk,
	}
}

// Now returns the current time in the reference timezone.
func (s *DeliverableService) Now() time.Time {
	return s.clock.Now()
}

// ListDeliverablesInput represents filters for listing deliverables
type ListDeliverablesInput struct {
	OrganizationID uint64
	EventID        *uint64
	SponsorID      *uint64
	AssigneeID     *uint64
	Statuses       []models.DeliverableStatus
	DueFrom        *time.Time
	DueTo          *time.Time
	SortByDueDate  bool
	Page           int
	PageSize       int
}

// CreateDeliverableInput represents input for creating a deliverable
type CreateDeliverableInput struct {
	OrganizationID uint64
	SponsorID      uint64
	Title          string
	Description    *string
	DueDate        *time.Time
	Priority       models.Priority
	AssigneeID     *uint64
}

// UpdateDeliverableInput represents input for updating a deliverable
type UpdateDeliverableInput struct {
	Title                 *string
	Description           *string
	DueDate               *time.Time
	Status                *models.DeliverableStatus
	Priority              *models.Priority
	CompletionNotes       *string
	CompletionEvidenceURL *string
}

// ListDeliverables returns the organization's deliverables matching the filters
func (s *DeliverableService) ListDeliverables(ctx context.Context, input ListDeliverablesInput) ([]models.Deliverable, int64, error) {
	for _, status := range input.Statuses {
		if !status.Valid() {
			return nil, 0, ErrInvalidStatus
		}
	}

	deliverables, total, err := s.deliverableRepo.List(ctx, repository.DeliverableFilter{
		OrganizationID: &input.OrganizationID,
		EventID:        input.EventID,
		SponsorID:      input.SponsorID,
		AssigneeID:     input.AssigneeID,
		Statuses:       input.Statuses,
		DueOnOrAfter:   input.DueFrom,
		DueOnOrBefore:  input.DueTo,
		SortByDueDate:  input.SortByDueDate,
		Page:           input.Page,
		PageSize:       input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deliverables: %w", err)
	}

	return deliverables, total, nil
}

// GetDeliverable returns a deliverable of the organization with its sponsor, event and assignee
func (s *DeliverableService) GetDeliverable(ctx context.Context, orgID, deliverableID uint64) (*models.Deliverable, error) {
	d, err := s.deliverableRepo.FindByID(ctx, deliverableID, "Sponsor.Event", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliverableNotFound
		}
		return nil, fmt.Errorf("failed to find deliverable: %w", err)
	}

	if owner, ok := d.OrganizationID(); !ok || owner != orgID {
		return nil, ErrDeliverableNotFound
	}

	return d, nil
}

// CreateDeliverable creates a pending deliverable for one of the organization's sponsors
func (s *DeliverableService) CreateDeliverable(ctx context.Context, input CreateDeliverableInput) (*models.Deliverable, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.DueDate == nil {
		return nil, ErrDueDateRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	sponsor, err := s.sponsors.GetSponsor(ctx, input.OrganizationID, input.SponsorID)
	if err != nil {
		return nil, err
	}
	if input.AssigneeID != nil {
		if err := s.ensureAssignable(ctx, input.OrganizationID, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	d := &models.Deliverable{
		SponsorID:   sponsor.ID,
		Title:       title,
		Description: input.Description,
		DueDate:     models.DateOnly(*input.DueDate),
		Status:      models.StatusPending,
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.deliverableRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create deliverable: %w", err)
	}

	return s.GetDeliverable(ctx, input.OrganizationID, d.ID)
}

// UpdateDeliverable applies a partial update. Completed and cancelled deliverables
// keep their status.
func (s *DeliverableService) UpdateDeliverable(ctx context.Context, orgID, deliverableID uint64, input UpdateDeliverableInput) (*models.Deliverable, error) {
	d, err := s.GetDeliverable(ctx, orgID, deliverableID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		d.Title = title
	}
	if input.Description != nil {
		d.Description = input.Description
	}
	if input.DueDate != nil {
		d.DueDate = models.DateOnly(*input.DueDate)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		d.Priority = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		if d.Status.Terminal() && *input.Status != d.Status {
			return nil, ErrInvalidStatusTransition
		}
		d.Status = *input.Status
	}
	if input.CompletionNotes != nil {
		d.CompletionNotes = input.CompletionNotes
	}
	if input.CompletionEvidenceURL != nil {
		d.CompletionEvidenceURL = input.CompletionEvidenceURL
	}

	if err := s.deliverableRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update deliverable: %w", err)
	}

	return s.GetDeliverable(ctx, orgID, d.ID)
}

// AssignDeliverable sets or clears (nil) the assignee
func (s *DeliverableService) AssignDeliverable(ctx context.Context, orgID, deliverableID uint64, assigneeID *uint64) (*models.Deliverable, error) {
	d, err := s.GetDeliverable(ctx, orgID, deliverableID)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		if err := s.ensureAssignable(ctx, orgID, *assigneeID); err != nil {
			return nil, err
		}
	}

	d.AssigneeID = assigneeID
	if err := s.deliverableRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to assign deliverable: %w", err)
	}

	return s.GetDeliverable(ctx, orgID, d.ID)
}

// DeleteDeliverable soft deletes a deliverable of the organization
func (s *DeliverableService) DeleteDeliverable(ctx context.Context, orgID, deliverableID uint64) error {
	if _, err := s.GetDeliverable(ctx, orgID, deliverableID); err != nil {
		return err
	}

	if err := s.deliverableRepo.Delete(ctx, deliverableID); err != nil {
		return fmt.Errorf("failed to delete deliverable: %w", err)
	}

	return nil
}

// RiskDashboard groups the organization's open deliverables by urgency
func (s *DeliverableService) RiskDashboard(ctx context.Context, orgID uint64) (risk.Buckets, error) {
	open, _, err := s.deliverableRepo.List(ctx, repository.DeliverableFilter{
		OrganizationID: &orgID,
		Statuses:       models.OpenStatuses,
		SortByDueDate:  true,
	})
	if err != nil {
		return risk.Buckets{}, fmt.Errorf("failed to list open deliverables: %w", err)
	}

	return risk.Categorize(open, s.clock.Now()), nil
}

// GenerateDeliverablesInput represents input for AI deliverable drafting
type GenerateDeliverablesInput struct {
	OrganizationID uint64
	SponsorID      uint64
	Text           string
}

// GenerateDeliverables drafts deliverables from contract text. Nothing is saved.
func (s *DeliverableService) GenerateDeliverables(ctx context.Context, input GenerateDeliverablesInput) ([]GeneratedDeliverable, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	sponsor, err := s.sponsors.GetSponsor(ctx, input.OrganizationID, input.SponsorID)
	if err != nil {
		return nil, err
	}

	today := models.DateOnly(s.clock.Now())
	drafts, err := s.aiService.GenerateDeliverablesFromContract(ctx, ContractContext{
		Text:        input.Text,
		Today:       today,
		CompanyName: sponsor.CompanyName,
		EventDate:   eventDate(sponsor),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate deliverables: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoDeliverables
	}
	if len(drafts) > constants.MaxAIGeneratedDeliverables {
		return nil, fmt.Errorf("AI generated too many deliverables (max %d)", constants.MaxAIGeneratedDeliverables)
	}

	valid := make([]GeneratedDeliverable, 0, len(drafts))
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		if !draft.Priority.Valid() {
			draft.Priority = models.PriorityMedium
		}
		if draft.DueDate != nil && draft.DueDate.Before(today) {
			draft.DueDate = nil
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidDeliverables
	}

	return valid, nil
}

func (s *DeliverableService) ensureAssignable(ctx context.Context, orgID, profileID uint64) error {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidAssignee
		}
		return fmt.Errorf("failed to verify assignee: %w", err)
	}
	if !profile.IsActive || profile.OrganizationID == nil || *profile.OrganizationID != orgID {
		return ErrInvalidAssignee
	}
	return nil
}

func eventDate(sponsor *models.Sponsor) *time.Time {
	if sponsor.Event == nil {
		return nil
	}
	return sponsor.Event.EventDate
}
