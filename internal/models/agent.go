package models

import "time"

// Agent is an authenticated CRM user, identified by phone number.
type Agent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Phone        string    `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	FullName     string    `gorm:"size:120" json:"full_name"`
	AgencyName   string    `gorm:"size:120" json:"agency_name,omitempty"`
	PasswordHash string    `gorm:"size:120;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName keeps the table name used by the original schema.
func (Agent) TableName() string { return "agents" }

// Label returns the display name used in exports: full name when present,
// otherwise the phone number.
func (a Agent) Label() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Phone
}
