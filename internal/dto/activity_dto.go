package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/proagent/activity-api/internal/models"
)

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest defines filters for retrieving activity events.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	AgentID    uint
	Kind       string
	Successful *bool
	Since      time.Time
	Until      time.Time
}

// ActivityCreateRequest captures manual activity event creation payloads.
type ActivityCreateRequest struct {
	AgentID               uint                   `json:"agent_id" validate:"required,gt=0"`
	Kind                  string                 `json:"kind" validate:"required,min=3"`
	Description           string                 `json:"description"`
	Metadata              map[string]interface{} `json:"metadata" validate:"omitempty"`
	RelatedAnnouncementID *uint                  `json:"related_announcement_id"`
	RelatedCollectionID   *uint                  `json:"related_collection_id"`
	IsSuccessful          *bool                  `json:"is_successful"`
	ErrorMessage          string                 `json:"error_message"`
}

// ActivityResponse serializes one activity event.
type ActivityResponse struct {
	ID                    uint                   `json:"id"`
	AgentID               uint                   `json:"agent_id"`
	Kind                  string                 `json:"kind"`
	KindLabel             string                 `json:"kind_label"`
	Description           string                 `json:"description,omitempty"`
	Metadata              map[string]interface{} `json:"metadata"`
	ClientIP              string                 `json:"client_ip,omitempty"`
	UserAgent             string                 `json:"user_agent,omitempty"`
	SessionKey            string                 `json:"session_key,omitempty"`
	PageURL               string                 `json:"page_url,omitempty"`
	Referrer              string                 `json:"referrer,omitempty"`
	RelatedAnnouncementID *uint                  `json:"related_announcement_id,omitempty"`
	RelatedCollectionID   *uint                  `json:"related_collection_id,omitempty"`
	IsSuccessful          bool                   `json:"is_successful"`
	ErrorMessage          string                 `json:"error_message,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
}

// ActivityListResponse wraps paginated activity events.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

func metadataFromJSON(data datatypes.JSONMap) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(data)
}

// NewActivityResponse converts a model into an activity DTO.
func NewActivityResponse(event models.ActivityEvent) ActivityResponse {
	return ActivityResponse{
		ID:                    event.ID,
		AgentID:               event.AgentID,
		Kind:                  string(event.Kind),
		KindLabel:             event.Kind.Label(),
		Description:           event.Description,
		Metadata:              metadataFromJSON(event.Metadata),
		ClientIP:              event.ClientIP,
		UserAgent:             event.UserAgent,
		SessionKey:            event.SessionKey,
		PageURL:               event.PageURL,
		Referrer:              event.Referrer,
		RelatedAnnouncementID: event.RelatedAnnouncementID,
		RelatedCollectionID:   event.RelatedCollectionID,
		IsSuccessful:          event.IsSuccessful,
		ErrorMessage:          event.ErrorMessage,
		CreatedAt:             event.CreatedAt,
	}
}
