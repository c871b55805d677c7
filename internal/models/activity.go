package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ActionKind categorises a recorded activity event.
type ActionKind string

// Known action kinds. Events with any other kind are rejected by the recorder.
const (
	ActionLogin                 ActionKind = "login"
	ActionLogout                ActionKind = "logout"
	ActionViewPage              ActionKind = "view_page"
	ActionCreateAnnouncement    ActionKind = "create_announcement"
	ActionEditAnnouncement      ActionKind = "edit_announcement"
	ActionDeleteAnnouncement    ActionKind = "delete_announcement"
	ActionArchiveAnnouncement   ActionKind = "archive_announcement"
	ActionUnarchiveAnnouncement ActionKind = "unarchive_announcement"
	ActionAutoArchive           ActionKind = "auto_archive_announcement"
	ActionViewAnnouncement      ActionKind = "view_announcement"
	ActionSearchAnnouncements   ActionKind = "search_announcements"
	ActionFilterAnnouncements   ActionKind = "filter_announcements"
	ActionCreateCollection      ActionKind = "create_collection"
	ActionEditCollection        ActionKind = "edit_collection"
	ActionDeleteCollection      ActionKind = "delete_collection"
	ActionAddToCollection       ActionKind = "add_to_collection"
	ActionRemoveFromCollection  ActionKind = "remove_from_collection"
	ActionViewCollection        ActionKind = "view_collection"
	ActionUploadPhoto           ActionKind = "upload_photo"
	ActionDeletePhoto           ActionKind = "delete_photo"
	ActionSetMainPhoto          ActionKind = "set_main_photo"
	ActionUploadUserPhoto       ActionKind = "upload_user_photo"
	ActionUpdateProfile         ActionKind = "update_profile"
	ActionViewProfile           ActionKind = "view_profile"
	ActionChangePassword        ActionKind = "change_password"
	ActionExportData            ActionKind = "export_data"
	ActionAPICall               ActionKind = "api_call"
	ActionError                 ActionKind = "error"
)

var actionLabels = map[ActionKind]string{
	ActionLogin:                 "Logged in",
	ActionLogout:                "Logged out",
	ActionViewPage:              "Viewed page",
	ActionCreateAnnouncement:    "Created announcement",
	ActionEditAnnouncement:      "Edited announcement",
	ActionDeleteAnnouncement:    "Deleted announcement",
	ActionArchiveAnnouncement:   "Archived announcement",
	ActionUnarchiveAnnouncement: "Restored announcement",
	ActionAutoArchive:           "Auto-archived announcement",
	ActionViewAnnouncement:      "Viewed announcement",
	ActionSearchAnnouncements:   "Searched announcements",
	ActionFilterAnnouncements:   "Filtered announcements",
	ActionCreateCollection:      "Created collection",
	ActionEditCollection:        "Edited collection",
	ActionDeleteCollection:      "Deleted collection",
	ActionAddToCollection:       "Added to collection",
	ActionRemoveFromCollection:  "Removed from collection",
	ActionViewCollection:        "Viewed collection",
	ActionUploadPhoto:           "Uploaded photo",
	ActionDeletePhoto:           "Deleted photo",
	ActionSetMainPhoto:          "Set main photo",
	ActionUploadUserPhoto:       "Uploaded profile photo",
	ActionUpdateProfile:         "Updated profile",
	ActionViewProfile:           "Viewed profile",
	ActionChangePassword:        "Changed password",
	ActionExportData:            "Exported data",
	ActionAPICall:               "API call",
	ActionError:                 "Error",
}

// Valid reports whether the kind is one of the known action kinds.
func (k ActionKind) Valid() bool {
	_, ok := actionLabels[k]
	return ok
}

// Label returns the human-readable display label for the kind.
func (k ActionKind) Label() string {
	if label, ok := actionLabels[k]; ok {
		return label
	}
	return string(k)
}

// Well-known metadata keys with dedicated display labels.
var metadataKeyLabels = map[string]string{
	"search_params": "Search params",
	"filter_params": "Filters",
	"old_values":    "Old values",
	"new_values":    "New values",
	"file_info":     "File",
	"page_type":     "Page type",
}

// ActivityEvent is one immutable audit record. Rows are append-only: they are
// created once by the recorder and deleted only by operator purge or by cascade
// when a related entity is removed.
type ActivityEvent struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	AgentID     uint              `gorm:"not null;index:idx_activity_agent_time" json:"agent_id"`
	Agent       *Agent            `gorm:"constraint:OnDelete:CASCADE" json:"agent,omitempty"`
	Kind        ActionKind        `gorm:"size:50;not null;index" json:"kind"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`

	ClientIP   string `gorm:"size:64" json:"client_ip,omitempty"`
	UserAgent  string `gorm:"type:text" json:"user_agent,omitempty"`
	SessionKey string `gorm:"size:40;index" json:"session_key,omitempty"`
	PageURL    string `gorm:"size:500" json:"page_url,omitempty"`
	Referrer   string `gorm:"size:500" json:"referrer,omitempty"`

	RelatedAnnouncementID *uint         `gorm:"index" json:"related_announcement_id,omitempty"`
	RelatedAnnouncement   *Announcement `gorm:"constraint:OnDelete:CASCADE" json:"related_announcement,omitempty"`
	RelatedCollectionID   *uint         `gorm:"index" json:"related_collection_id,omitempty"`
	RelatedCollection     *Collection   `gorm:"constraint:OnDelete:CASCADE" json:"related_collection,omitempty"`

	IsSuccessful bool   `gorm:"not null;default:true" json:"is_successful"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_activity_agent_time;index" json:"created_at"`
}

// TableName keeps the table name used by the original schema.
func (ActivityEvent) TableName() string { return "user_activities" }

// FormattedMetadata flattens the metadata map into one display string, giving
// well-known keys their dedicated labels. Values that cannot be rendered are
// stringified best-effort; the export never fails on a metadata payload.
func (e ActivityEvent) FormattedMetadata() string {
	if len(e.Metadata) == 0 {
		return ""
	}

	keys := make([]string, 0, len(e.Metadata))
	for key := range e.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		label := key
		if known, ok := metadataKeyLabels[key]; ok {
			label = known
		}
		lines = append(lines, fmt.Sprintf("%s: %v", label, e.Metadata[key]))
	}

	return strings.Join(lines, "\n")
}
