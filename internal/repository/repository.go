package repository

import (
	"context"
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// DeliverableRepository defines the interface for deliverable data access
type DeliverableRepository interface {
	// Create creates a new deliverable
	Create(ctx context.Context, deliverable *models.Deliverable) error

	// FindByID finds a deliverable by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Deliverable, error)

	// List retrieves deliverables with filtering and pagination. Sponsor, Sponsor.Event
	// and Assignee are always preloaded.
	List(ctx context.Context, filter DeliverableFilter) ([]models.Deliverable, int64, error)

	// Update updates a deliverable
	Update(ctx context.Context, deliverable *models.Deliverable) error

	// Delete soft deletes a deliverable
	Delete(ctx context.Context, id uint64) error

	// MarkNotified records a sent reminder. The stored value never moves backwards.
	MarkNotified(ctx context.Context, id uint64, at time.Time) error
}

// DeliverableFilter holds filtering options for listing deliverables.
// Due date bounds are compared against calendar dates.
type DeliverableFilter struct {
	// OrganizationID scopes through the owning sponsor. Nil means every organization
	// and is reserved for the reminder sweep.
	OrganizationID *uint64
	EventID        *uint64
	SponsorID      *uint64
	AssigneeID     *uint64
	Statuses       []models.DeliverableStatus
	DueOnOrAfter   *time.Time
	DueOnOrBefore  *time.Time
	DueBefore      *time.Time
	SortByDueDate  bool
	Page           int
	PageSize       int
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	// FindByInviteCode finds an organization by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Organization, error)

	// SlugExists reports whether an organization already uses slug
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization and all related data
	Delete(ctx context.Context, id uint64) error

	// ListMembers lists all active profiles of an organization
	ListMembers(ctx context.Context, organizationID uint64) ([]models.Profile, error)
}

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	// CreateWithOrganization creates a profile and the organization it administers
	// within a single transaction.
	CreateWithOrganization(ctx context.Context, profile *models.Profile, org *models.Organization) error

	// FindByID finds a profile by ID
	FindByID(ctx context.Context, id uint64) (*models.Profile, error)

	// FindByEmail finds a profile by email
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)

	// Update updates a profile
	Update(ctx context.Context, profile *models.Profile) error

	// ListAdmins lists the active admins of an organization
	ListAdmins(ctx context.Context, organizationID uint64) ([]models.Profile, error)

	// CountAdmins counts the active admins of an organization
	CountAdmins(ctx context.Context, organizationID uint64) (int64, error)
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create creates a new event
	Create(ctx context.Context, event *models.Event) error

	// FindByID finds an event by ID
	FindByID(ctx context.Context, id uint64) (*models.Event, error)

	// ListByOrganization lists the events of an organization, soonest first
	ListByOrganization(ctx context.Context, organizationID uint64) ([]models.Event, error)
}

// SponsorRepository defines the interface for sponsor data access
type SponsorRepository interface {
	// CreateWithDeliverables creates a sponsor and its initial deliverables atomically
	CreateWithDeliverables(ctx context.Context, sponsor *models.Sponsor, deliverables []models.Deliverable) error

	// FindByID finds a sponsor by ID with its event
	FindByID(ctx context.Context, id uint64) (*models.Sponsor, error)

	// List lists the sponsors of an organization, optionally for one event
	List(ctx context.Context, organizationID uint64, eventID *uint64) ([]models.Sponsor, error)

	// ListTemplates lists active templates for a package tier, organization-specific
	// and global ones together
	ListTemplates(ctx context.Context, organizationID uint64, tier models.PackageTier) ([]models.DeliverableTemplate, error)
}
