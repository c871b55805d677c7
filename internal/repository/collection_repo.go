package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/proagent/activity-api/internal/models"
)

// CollectionRepository serves the read-only collection surface.
type CollectionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Collection, error)
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository constructs the collection repository.
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) FindByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}
