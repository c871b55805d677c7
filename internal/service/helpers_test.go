package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint { return &v }

func ptrBool(v bool) *bool { return &v }

// memoryEventRepo is an in-memory ActivityEventRepository. With failing set it
// rejects every write, which is how the recorder's drop path is exercised.
type memoryEventRepo struct {
	events  []models.ActivityEvent
	failing bool
}

func (m *memoryEventRepo) Create(ctx context.Context, event *models.ActivityEvent) error {
	if m.failing {
		return errors.New("store unavailable")
	}
	event.ID = uint(len(m.events) + 1)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *memoryEventRepo) List(ctx context.Context, filter repository.ActivityEventFilter) ([]models.ActivityEvent, int64, error) {
	matched := m.filtered(filter)
	return matched, int64(len(matched)), nil
}

func (m *memoryEventRepo) ListForExport(ctx context.Context, filter repository.ActivityEventFilter) ([]models.ActivityEvent, error) {
	return m.filtered(filter), nil
}

func (m *memoryEventRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	kept := m.events[:0]
	var removed int64
	for _, event := range m.events {
		if event.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, event)
	}
	m.events = kept
	return removed, nil
}

func (m *memoryEventRepo) filtered(filter repository.ActivityEventFilter) []models.ActivityEvent {
	matched := make([]models.ActivityEvent, 0, len(m.events))
	for _, event := range m.events {
		if filter.AgentID != nil && event.AgentID != *filter.AgentID {
			continue
		}
		if filter.Kind != "" && event.Kind != filter.Kind {
			continue
		}
		if filter.Successful != nil && event.IsSuccessful != *filter.Successful {
			continue
		}
		matched = append(matched, event)
	}
	return matched
}

// memorySessionRepo is an in-memory SessionRepository.
type memorySessionRepo struct {
	records []models.SessionRecord
	failing bool
}

func (m *memorySessionRepo) GetOrCreate(ctx context.Context, agentID uint, sessionKey string, loginTime time.Time) (models.SessionRecord, bool, error) {
	if m.failing {
		return models.SessionRecord{}, false, errors.New("store unavailable")
	}
	for _, record := range m.records {
		if record.AgentID == agentID && record.SessionKey == sessionKey {
			return record, false, nil
		}
	}
	record := models.SessionRecord{
		ID:         uint(len(m.records) + 1),
		AgentID:    agentID,
		SessionKey: sessionKey,
		LoginTime:  loginTime,
	}
	m.records = append(m.records, record)
	return record, true, nil
}

func (m *memorySessionRepo) Close(ctx context.Context, agentID uint, sessionKey string, logoutTime time.Time) (*models.SessionRecord, error) {
	if m.failing {
		return nil, errors.New("store unavailable")
	}
	for i := range m.records {
		record := &m.records[i]
		if record.AgentID == agentID && record.SessionKey == sessionKey && record.Open() {
			duration := logoutTime.Sub(record.LoginTime)
			record.LogoutTime = &logoutTime
			record.Duration = &duration
			closed := *record
			return &closed, nil
		}
	}
	return nil, nil
}

func (m *memorySessionRepo) List(ctx context.Context, filter repository.SessionFilter) ([]models.SessionRecord, int64, error) {
	matched := make([]models.SessionRecord, 0, len(m.records))
	for _, record := range m.records {
		if filter.AgentID != nil && record.AgentID != *filter.AgentID {
			continue
		}
		if filter.OpenOnly && !record.Open() {
			continue
		}
		matched = append(matched, record)
	}
	return matched, int64(len(matched)), nil
}

// capturingRecorder collects the entries passed through the recorder side
// channel so tests can assert on emitted audit events.
type capturingRecorder struct {
	entries []ActivityEntry
}

func (c *capturingRecorder) Record(ctx context.Context, entry ActivityEntry) {
	c.entries = append(c.entries, entry)
}
