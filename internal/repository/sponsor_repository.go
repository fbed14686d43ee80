package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateSponsor is returned when creating a sponsor fails inside its transaction.
	ErrCreateSponsor = errors.New("sponsor repository: create sponsor failed")
	// ErrCreateDeliverables is returned when provisioning deliverables fails inside the sponsor transaction.
	ErrCreateDeliverables = errors.New("sponsor repository: create deliverables failed")
)

// GormSponsorRepository is a GORM implementation of SponsorRepository
type GormSponsorRepository struct {
	db *gorm.DB
}

// NewSponsorRepository creates a new SponsorRepository
func NewSponsorRepository(db *gorm.DB) SponsorRepository {
	return &GormSponsorRepository{db: db}
}

// CreateWithDeliverables creates a sponsor and assigns it the given deliverables
func (r *GormSponsorRepository) CreateWithDeliverables(ctx context.Context, sponsor *models.Sponsor, deliverables []models.Deliverable) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Event").Create(sponsor).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateSponsor, err)
		}

		if len(deliverables) == 0 {
			return nil
		}

		for i := range deliverables {
			deliverables[i].SponsorID = sponsor.ID
		}
		if err := tx.Omit("Sponsor", "Assignee").Create(&deliverables).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateDeliverables, err)
		}

		return nil
	})
}

// FindByID finds a sponsor by ID with its event
func (r *GormSponsorRepository) FindByID(ctx context.Context, id uint64) (*models.Sponsor, error) {
	var sponsor models.Sponsor
	if err := r.db.WithContext(ctx).Preload("Event").First(&sponsor, id).Error; err != nil {
		return nil, err
	}
	return &sponsor, nil
}

// List lists the sponsors of an organization, optionally for one event
func (r *GormSponsorRepository) List(ctx context.Context, organizationID uint64, eventID *uint64) ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	query := r.db.WithContext(ctx).Where("organization_id = ?", organizationID)
	if eventID != nil {
		query = query.Where("event_id = ?", *eventID)
	}
	if err := query.Preload("Event").Order("company_name ASC, id ASC").Find(&sponsors).Error; err != nil {
		return nil, err
	}
	return sponsors, nil
}

// ListTemplates lists active templates for a package tier
func (r *GormSponsorRepository) ListTemplates(ctx context.Context, organizationID uint64, tier models.PackageTier) ([]models.DeliverableTemplate, error) {
	var templates []models.DeliverableTemplate
	if err := r.db.WithContext(ctx).
		Where("package_tier = ? AND is_active = ?", tier, true).
		Where("organization_id IS NULL OR organization_id = ?", organizationID).
		Order("days_before_event DESC, id ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
