package repository

import (
	"context"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"gorm.io/gorm"
)

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

// Create creates a new event
func (r *GormEventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByID finds an event by ID
func (r *GormEventRepository) FindByID(ctx context.Context, id uint64) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByOrganization lists events with undated ones last
func (r *GormEventRepository) ListByOrganization(ctx context.Context, organizationID uint64) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("CASE WHEN event_date IS NULL THEN 1 ELSE 0 END, event_date ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
