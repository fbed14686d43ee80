package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"gorm.io/gorm"
)

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateProfile is returned when creating a profile fails inside the signup transaction.
	ErrCreateProfile = errors.New("profile repository: create profile failed")
	// ErrCreateOrganization is returned when creating an organization fails inside the signup transaction.
	ErrCreateOrganization = errors.New("profile repository: create organization failed")
)

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

// CreateWithOrganization creates the organization first, then the profile as its admin.
func (r *GormProfileRepository) CreateWithOrganization(ctx context.Context, profile *models.Profile, org *models.Organization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		profile.OrganizationID = &org.ID
		profile.Role = models.RoleAdmin

		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProfile, err)
		}

		return nil
	})
}

// FindByID finds a profile by ID
func (r *GormProfileRepository) FindByID(ctx context.Context, id uint64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByEmail finds a profile by email
func (r *GormProfileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update updates a profile
func (r *GormProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit("Organization").Save(profile).Error
}

// ListAdmins lists the active admins of an organization
func (r *GormProfileRepository) ListAdmins(ctx context.Context, organizationID uint64) ([]models.Profile, error) {
	var admins []models.Profile
	if err := r.admins(ctx, organizationID).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

// CountAdmins counts the active admins of an organization
func (r *GormProfileRepository) CountAdmins(ctx context.Context, organizationID uint64) (int64, error) {
	var count int64
	err := r.admins(ctx, organizationID).Model(&models.Profile{}).Count(&count).Error
	return count, err
}

func (r *GormProfileRepository) admins(ctx context.Context, organizationID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("organization_id = ? AND role = ? AND is_active = ?", organizationID, models.RoleAdmin, true)
}
