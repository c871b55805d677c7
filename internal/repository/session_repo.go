package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/proagent/activity-api/internal/models"
)

// SessionFilter narrows session record queries.
type SessionFilter struct {
	Page     int
	PageSize int
	AgentID  *uint
	OpenOnly bool
}

// SessionRepository persists browsing session records.
type SessionRepository interface {
	GetOrCreate(ctx context.Context, agentID uint, sessionKey string, loginTime time.Time) (models.SessionRecord, bool, error)
	Close(ctx context.Context, agentID uint, sessionKey string, logoutTime time.Time) (*models.SessionRecord, error)
	List(ctx context.Context, filter SessionFilter) ([]models.SessionRecord, int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs the session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// GetOrCreate inserts an open record for the (agent, session key) pair unless
// one already exists. The composite unique index arbitrates concurrent
// first-sight requests: exactly one insert wins, everyone else reads the
// existing row. The boolean reports whether this call created the record.
func (r *sessionRepository) GetOrCreate(ctx context.Context, agentID uint, sessionKey string, loginTime time.Time) (models.SessionRecord, bool, error) {
	record := models.SessionRecord{
		AgentID:    agentID,
		SessionKey: sessionKey,
		LoginTime:  loginTime,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "agent_id"}, {Name: "session_key"}},
			DoNothing: true,
		}).
		Create(&record)
	if result.Error != nil {
		return models.SessionRecord{}, false, result.Error
	}

	created := result.RowsAffected > 0
	if created {
		return record, true, nil
	}

	var existing models.SessionRecord
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND session_key = ?", agentID, sessionKey).
		First(&existing).Error
	if err != nil {
		return models.SessionRecord{}, false, err
	}

	return existing, false, nil
}

// Close stamps the logout time and duration on the open record for the pair.
// Closed records are terminal; if no open record exists the call returns nil
// without error.
func (r *sessionRepository) Close(ctx context.Context, agentID uint, sessionKey string, logoutTime time.Time) (*models.SessionRecord, error) {
	var record models.SessionRecord
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND session_key = ? AND logout_time IS NULL", agentID, sessionKey).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	duration := logoutTime.Sub(record.LoginTime)
	record.LogoutTime = &logoutTime
	record.Duration = &duration

	updates := map[string]interface{}{
		"logout_time": logoutTime,
		"duration":    duration,
	}
	if err := r.db.WithContext(ctx).Model(&record).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *sessionRepository) List(ctx context.Context, filter SessionFilter) ([]models.SessionRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SessionRecord{})

	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}

	if filter.OpenOnly {
		query = query.Where("logout_time IS NULL")
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var records []models.SessionRecord
	if err := query.Preload("Agent").Order("login_time DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
