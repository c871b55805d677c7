package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/proagent/activity-api/internal/models"
)

// ActivityEventFilter narrows activity event queries.
type ActivityEventFilter struct {
	Page       int
	PageSize   int
	AgentID    *uint
	Kind       models.ActionKind
	Successful *bool
	Since      time.Time
	Until      time.Time
}

// ActivityEventRepository persists the append-only audit trail.
type ActivityEventRepository interface {
	Create(ctx context.Context, event *models.ActivityEvent) error
	List(ctx context.Context, filter ActivityEventFilter) ([]models.ActivityEvent, int64, error)
	ListForExport(ctx context.Context, filter ActivityEventFilter) ([]models.ActivityEvent, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type activityEventRepository struct {
	db *gorm.DB
}

// NewActivityEventRepository constructs the activity event repository.
func NewActivityEventRepository(db *gorm.DB) ActivityEventRepository {
	return &activityEventRepository{db: db}
}

func (r *activityEventRepository) Create(ctx context.Context, event *models.ActivityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *activityEventRepository) List(ctx context.Context, filter ActivityEventFilter) ([]models.ActivityEvent, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityEvent{}), filter)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var events []models.ActivityEvent
	if err := query.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// ListForExport loads the filtered events with the actor and related entities
// preloaded, oldest first, without pagination.
func (r *activityEventRepository) ListForExport(ctx context.Context, filter ActivityEventFilter) ([]models.ActivityEvent, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityEvent{}), filter).
		Preload("Agent").
		Preload("RelatedAnnouncement").
		Preload("RelatedCollection")

	var events []models.ActivityEvent
	if err := query.Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

// PurgeOlderThan is the only deletion path besides entity cascade; it exists
// for the operator bulk purge.
func (r *activityEventRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityEvent{})
	return result.RowsAffected, result.Error
}

func (r *activityEventRepository) applyFilter(query *gorm.DB, filter ActivityEventFilter) *gorm.DB {
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	if filter.Successful != nil {
		query = query.Where("is_successful = ?", *filter.Successful)
	}

	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}

	if !filter.Until.IsZero() {
		query = query.Where("created_at < ?", filter.Until)
	}

	return query
}
