package repository

import (
	"context"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByInviteCode finds an organization by invite code
func (r *GormOrganizationRepository) FindByInviteCode(ctx context.Context, code string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// SlugExists reports whether an organization already uses slug
func (r *GormOrganizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Organization{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Omit("Profiles", "Events", "Sponsors").Save(org).Error
}

// Delete deletes an organization and all related data in a transaction
func (r *GormOrganizationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sponsorIDs := tx.Model(&models.Sponsor{}).Select("id").Where("organization_id = ?", id)
		if err := tx.Where("sponsor_id IN (?)", sponsorIDs).Delete(&models.Deliverable{}).Error; err != nil {
			return err
		}

		if err := tx.Where("organization_id = ?", id).Delete(&models.Sponsor{}).Error; err != nil {
			return err
		}

		if err := tx.Where("organization_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}

		// Profiles outlive the organization; they are detached, not deleted.
		if err := tx.Model(&models.Profile{}).
			Where("organization_id = ?", id).
			Updates(map[string]interface{}{"organization_id": nil, "role": models.RoleMember}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Organization{}, id).Error
	})
}

// ListMembers lists all active profiles of an organization
func (r *GormOrganizationRepository) ListMembers(ctx context.Context, organizationID uint64) ([]models.Profile, error) {
	var members []models.Profile
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
