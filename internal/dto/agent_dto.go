package dto

import (
	"time"

	"github.com/proagent/activity-api/internal/models"
)

// AgentResponse serializes the authenticated agent's own profile.
type AgentResponse struct {
	ID         uint      `json:"id"`
	Phone      string    `json:"phone"`
	FullName   string    `json:"full_name,omitempty"`
	AgencyName string    `json:"agency_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAgentResponse converts a model into an agent DTO.
func NewAgentResponse(agent models.Agent) AgentResponse {
	return AgentResponse{
		ID:         agent.ID,
		Phone:      agent.Phone,
		FullName:   agent.FullName,
		AgencyName: agent.AgencyName,
		CreatedAt:  agent.CreatedAt,
	}
}
