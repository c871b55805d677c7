package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/proagent/activity-api/internal/models"
)

// AnnouncementFilter narrows listing queries on the read-only surface.
type AnnouncementFilter struct {
	Page       int
	PageSize   int
	District   string
	RoomsCount int
}

// AnnouncementRepository serves the read-only listing surface and the archive sweep.
type AnnouncementRepository interface {
	ListActive(ctx context.Context, filter AnnouncementFilter) ([]models.Announcement, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Announcement, error)
	ListStale(ctx context.Context, cutoff time.Time) ([]models.Announcement, error)
	Archive(ctx context.Context, id uint) error
	DistinctDistricts(ctx context.Context) ([]string, error)
	DistinctBuildingTypes(ctx context.Context) ([]string, error)
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository constructs the announcement repository.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) ListActive(ctx context.Context, filter AnnouncementFilter) ([]models.Announcement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Announcement{}).Where("is_archived = ?", false)

	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}

	if filter.RoomsCount > 0 {
		query = query.Where("rooms_count = ?", filter.RoomsCount)
	}

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
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var items []models.Announcement
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *announcementRepository) FindByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var item models.Announcement
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListStale returns active announcements created before the cutoff, oldest first.
func (r *announcementRepository) ListStale(ctx context.Context, cutoff time.Time) ([]models.Announcement, error) {
	var items []models.Announcement
	err := r.db.WithContext(ctx).
		Where("is_archived = ? AND created_at < ?", false, cutoff).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *announcementRepository) Archive(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Announcement{}).
		Where("id = ?", id).
		Update("is_archived", true).Error
}

func (r *announcementRepository) DistinctDistricts(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "district")
}

func (r *announcementRepository) DistinctBuildingTypes(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "building_type")
}

func (r *announcementRepository) distinctColumn(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.Announcement{}).
		Where(column+" <> ''").
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
