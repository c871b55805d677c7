package dto

import "time"

// LoginRequest carries agent credentials.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required,min=5"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse returns the issued token and session key.
type LoginResponse struct {
	Token      string    `json:"token"`
	SessionKey string    `json:"session_key"`
	AgentID    uint      `json:"agent_id"`
	FullName   string    `json:"full_name"`
	ExpiresAt  time.Time `json:"expires_at"`
}
