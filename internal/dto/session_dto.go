package dto

import (
	"time"

	"github.com/proagent/activity-api/internal/models"
)

// SessionListRequest defines filters for retrieving session records.
type SessionListRequest struct {
	Page     int
	PageSize int
	AgentID  uint
	OpenOnly bool
}

// SessionResponse serializes one session record.
type SessionResponse struct {
	ID         uint       `json:"id"`
	AgentID    uint       `json:"agent_id"`
	AgentLabel string     `json:"agent_label,omitempty"`
	SessionKey string     `json:"session_key"`
	LoginTime  time.Time  `json:"login_time"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
	DurationS  *float64   `json:"duration_seconds,omitempty"`
}

// SessionListResponse wraps paginated session records.
type SessionListResponse struct {
	Items      []SessionResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewSessionResponse converts a model into a session DTO.
func NewSessionResponse(record models.SessionRecord) SessionResponse {
	response := SessionResponse{
		ID:         record.ID,
		AgentID:    record.AgentID,
		SessionKey: record.SessionKey,
		LoginTime:  record.LoginTime,
		LogoutTime: record.LogoutTime,
	}
	if record.Agent != nil {
		response.AgentLabel = record.Agent.Label()
	}
	if record.Duration != nil {
		seconds := record.Duration.Seconds()
		response.DurationS = &seconds
	}
	return response
}
