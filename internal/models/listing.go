package models

import (
	"fmt"
	"time"
)

// Announcement is a property listing. Only the fields the activity pipeline
// observes are modelled here; the listing write flows live elsewhere.
type Announcement struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AgentID      uint      `gorm:"not null;index" json:"agent_id"`
	Agent        *Agent    `gorm:"constraint:OnDelete:CASCADE" json:"agent,omitempty"`
	RoomsCount   int       `json:"rooms_count"`
	Price        int64     `json:"price"`
	District     string    `gorm:"size:120;index" json:"district"`
	BuildingType string    `gorm:"size:60;index" json:"building_type"`
	IsArchived   bool      `gorm:"not null;default:false;index" json:"is_archived"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName keeps the table name used by the original schema.
func (Announcement) TableName() string { return "announcements" }

// Label renders the short reference string used in activity exports.
func (a Announcement) Label() string {
	return fmt.Sprintf("#%d, %d rooms, %d", a.ID, a.RoomsCount, a.Price)
}

// Collection is a saved set of listings curated by an agent.
type Collection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AgentID   uint      `gorm:"not null;index" json:"agent_id"`
	Agent     *Agent    `gorm:"constraint:OnDelete:CASCADE" json:"agent,omitempty"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the table name used by the original schema.
func (Collection) TableName() string { return "collections" }

// Label renders the reference string used in activity exports.
func (c Collection) Label() string { return c.Name }
