package dto

import (
	"time"

	"github.com/proagent/activity-api/internal/models"
)

// AnnouncementResponse serializes one listing on the read-only surface.
type AnnouncementResponse struct {
	ID           uint      `json:"id"`
	AgentID      uint      `json:"agent_id"`
	RoomsCount   int       `json:"rooms_count"`
	Price        int64     `json:"price"`
	District     string    `json:"district"`
	BuildingType string    `json:"building_type"`
	IsArchived   bool      `json:"is_archived"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnnouncementListResponse wraps paginated listings.
type AnnouncementListResponse struct {
	Items      []AnnouncementResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
}

// CollectionResponse serializes one collection.
type CollectionResponse struct {
	ID        uint      `json:"id"`
	AgentID   uint      `json:"agent_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAnnouncementResponse converts a model into a listing DTO.
func NewAnnouncementResponse(item models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:           item.ID,
		AgentID:      item.AgentID,
		RoomsCount:   item.RoomsCount,
		Price:        item.Price,
		District:     item.District,
		BuildingType: item.BuildingType,
		IsArchived:   item.IsArchived,
		CreatedAt:    item.CreatedAt,
	}
}

// NewCollectionResponse converts a model into a collection DTO.
func NewCollectionResponse(item models.Collection) CollectionResponse {
	return CollectionResponse{
		ID:        item.ID,
		AgentID:   item.AgentID,
		Name:      item.Name,
		CreatedAt: item.CreatedAt,
	}
}
