package models

import "time"

// SessionRecord tracks one authenticated browsing session. At most one open
// record (LogoutTime null) exists per (agent, session key) pair; the composite
// unique index makes concurrent first-sight creation resolve to a single row.
// A closed record is terminal and is never reopened.
type SessionRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AgentID    uint           `gorm:"not null;uniqueIndex:idx_sessions_agent_key" json:"agent_id"`
	Agent      *Agent         `gorm:"constraint:OnDelete:CASCADE" json:"agent,omitempty"`
	SessionKey string         `gorm:"size:40;not null;uniqueIndex:idx_sessions_agent_key" json:"session_key"`
	LoginTime  time.Time      `gorm:"not null" json:"login_time"`
	LogoutTime *time.Time     `json:"logout_time,omitempty"`
	Duration   *time.Duration `json:"duration,omitempty"`
}

// TableName keeps the table name used by the original schema.
func (SessionRecord) TableName() string { return "user_sessions" }

// Open reports whether the session has not been closed yet.
func (s SessionRecord) Open() bool { return s.LogoutTime == nil }
