package repository

import (
	"context"
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/database"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/utils"
	"gorm.io/gorm"
)

// GormDeliverableRepository is a GORM implementation of DeliverableRepository
type GormDeliverableRepository struct {
	db *gorm.DB
}

// NewDeliverableRepository creates a new DeliverableRepository
func NewDeliverableRepository(db *gorm.DB) DeliverableRepository {
	return &GormDeliverableRepository{db: db}
}

// Create creates a new deliverable
func (r *GormDeliverableRepository) Create(ctx context.Context, deliverable *models.Deliverable) error {
	return r.db.WithContext(ctx).Create(deliverable).Error
}

// FindByID finds a deliverable by ID with optional preloading
func (r *GormDeliverableRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Deliverable, error) {
	var deliverable models.Deliverable
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&deliverable, id).Error; err != nil {
		return nil, err
	}

	return &deliverable, nil
}

// List retrieves deliverables with filtering and pagination
func (r *GormDeliverableRepository) List(ctx context.Context, filter DeliverableFilter) ([]models.Deliverable, int64, error) {
	var deliverables []models.Deliverable

	query := r.db.WithContext(ctx).Model(&models.Deliverable{})

	if filter.OrganizationID != nil {
		query = query.
			Joins("JOIN sponsors ON sponsors.id = deliverables.sponsor_id AND sponsors.deleted_at IS NULL").
			Where("sponsors.organization_id = ?", *filter.OrganizationID)
		if filter.EventID != nil {
			query = query.Where("sponsors.event_id = ?", *filter.EventID)
		}
	} else if filter.EventID != nil {
		eventSubQuery := r.db.Model(&models.Sponsor{}).
			Select("sponsors.id").
			Where("sponsors.event_id = ?", *filter.EventID)
		query = query.Where("deliverables.sponsor_id IN (?)", eventSubQuery)
	}

	if filter.SponsorID != nil {
		query = query.Where("deliverables.sponsor_id = ?", *filter.SponsorID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("deliverables.assignee_id = ?", *filter.AssigneeID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("deliverables.status IN ?", filter.Statuses)
	}
	if filter.DueOnOrAfter != nil {
		query = query.Where("deliverables.due_date >= ?", models.DateOnly(*filter.DueOnOrAfter))
	}
	if filter.DueOnOrBefore != nil {
		query = query.Where("deliverables.due_date <= ?", models.DateOnly(*filter.DueOnOrBefore))
	}
	if filter.DueBefore != nil {
		query = query.Where("deliverables.due_date < ?", models.DateOnly(*filter.DueBefore))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("deliverables.due_date ASC").Order("deliverables.id ASC")
	} else {
		listQuery = listQuery.Order("deliverables.created_at DESC").Order("deliverables.id DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.
		Select("deliverables.*").
		Preload("Sponsor.Event").
		Preload("Assignee").
		Find(&deliverables).Error; err != nil {
		return nil, 0, err
	}

	return deliverables, total, nil
}

// Update updates a deliverable. last_notified_at is only written by MarkNotified.
func (r *GormDeliverableRepository) Update(ctx context.Context, deliverable *models.Deliverable) error {
	return r.db.WithContext(ctx).Omit("Sponsor", "Assignee", "LastNotifiedAt").Save(deliverable).Error
}

// Delete soft deletes a deliverable
func (r *GormDeliverableRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Deliverable{}, id).Error
}

// MarkNotified sets last_notified_at unless a later value is already stored.
// Hooks and updated_at are skipped.
func (r *GormDeliverableRepository) MarkNotified(ctx context.Context, id uint64, at time.Time) error {
	at = at.UTC()
	return r.db.WithContext(ctx).
		Model(&models.Deliverable{}).
		Where("id = ?", id).
		Where("last_notified_at IS NULL OR last_notified_at < ?", at).
		UpdateColumn("last_notified_at", at).Error
}
