package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/utils"
)

func newActivityService(repo *memoryEventRepo) ActivityService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewActivityService(repo, validate, 1024, testLogger())
}

func TestActivityServiceRecordPersistsEvent(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{
		AgentID:     7,
		Kind:        models.ActionViewPage,
		Description: "Viewed page /announcements",
		Metadata:    map[string]interface{}{"page_type": "announcements_list"},
		Request: &utils.RequestContext{
			ClientIP:   "203.0.113.9",
			UserAgent:  "test-agent/1.0",
			SessionKey: "sess-1",
			PageURL:    "http://example.com/announcements",
		},
	})

	require.Len(t, repo.events, 1)
	event := repo.events[0]
	require.Equal(t, uint(7), event.AgentID)
	require.Equal(t, models.ActionViewPage, event.Kind)
	require.True(t, event.IsSuccessful, "success defaults to true")
	require.Equal(t, "203.0.113.9", event.ClientIP)
	require.Equal(t, "sess-1", event.SessionKey)
	require.Equal(t, "announcements_list", event.Metadata["page_type"])
}

func TestActivityServiceRecordNeverPropagatesFailures(t *testing.T) {
	repo := &memoryEventRepo{failing: true}
	svc := newActivityService(repo)

	require.NotPanics(t, func() {
		svc.Record(context.Background(), ActivityEntry{AgentID: 1, Kind: models.ActionLogin})
	})
	require.Empty(t, repo.events)
}

func TestActivityServiceRecordRejectsInvalidEntries(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{AgentID: 0, Kind: models.ActionLogin})
	svc.Record(context.Background(), ActivityEntry{AgentID: 1, Kind: "made_up_kind"})

	require.Empty(t, repo.events, "anonymous or unknown-kind entries are dropped")
}

func TestActivityServiceErrorMessageImpliesFailure(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{
		AgentID:      1,
		Kind:         models.ActionLogin,
		ErrorMessage: "password mismatch",
	})

	require.Len(t, repo.events, 1)
	require.False(t, repo.events[0].IsSuccessful)
	require.Equal(t, "password mismatch", repo.events[0].ErrorMessage)
}

func TestActivityServiceDropsErrorMessageOnSuccess(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{
		AgentID:      1,
		Kind:         models.ActionLogin,
		IsSuccessful: ptrBool(true),
		ErrorMessage: "stale error",
	})

	require.Len(t, repo.events, 1)
	require.True(t, repo.events[0].IsSuccessful)
	require.Empty(t, repo.events[0].ErrorMessage)
}

func TestActivityServiceMasksSensitiveMetadata(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{
		AgentID: 1,
		Kind:    models.ActionUpdateProfile,
		Metadata: map[string]interface{}{
			"old_password": "secret",
			"auth_token":   "abc123",
			"field":        "full_name",
		},
	})

	require.Len(t, repo.events, 1)
	metadata := repo.events[0].Metadata
	require.Equal(t, "***", metadata["old_password"])
	require.Equal(t, "***", metadata["auth_token"])
	require.Equal(t, "full_name", metadata["field"])
}

func TestActivityServiceDropsInvalidWellKnownKeys(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{
		AgentID: 1,
		Kind:    models.ActionFilterAnnouncements,
		Metadata: map[string]interface{}{
			"filter_params": "not-an-object",
			"page_type":     "announcements_list",
		},
	})

	require.Len(t, repo.events, 1)
	metadata := repo.events[0].Metadata
	require.NotContains(t, metadata, "filter_params", "schema violations are dropped, not fatal")
	require.Equal(t, "announcements_list", metadata["page_type"])
}

func TestActivityServiceTruncatesOversizedMetadata(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{
		AgentID:  1,
		Kind:     models.ActionAPICall,
		Metadata: map[string]interface{}{"payload": strings.Repeat("x", 4096)},
	})

	require.Len(t, repo.events, 1)
	metadata := repo.events[0].Metadata
	require.Equal(t, true, metadata["truncated"])
	require.NotContains(t, metadata, "payload")
}

func TestActivityServiceCreateValidates(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	_, err := svc.Create(context.Background(), dto.ActivityCreateRequest{Kind: "login"})
	require.Error(t, err, "agent id is required")

	_, err = svc.Create(context.Background(), dto.ActivityCreateRequest{AgentID: 1, Kind: "made_up_kind"})
	require.Error(t, err)

	response, err := svc.Create(context.Background(), dto.ActivityCreateRequest{
		AgentID:     1,
		Kind:        "Login",
		Description: "manual entry",
	})
	require.NoError(t, err, "kind is normalized before validation")
	require.Equal(t, "login", response.Kind)
	require.Len(t, repo.events, 1)
}

func TestActivityServicePurge(t *testing.T) {
	repo := &memoryEventRepo{}
	svc := newActivityService(repo)

	svc.Record(context.Background(), ActivityEntry{AgentID: 1, Kind: models.ActionViewPage})

	_, err := svc.Purge(context.Background(), 0)
	require.Error(t, err, "purge window must be positive")

	removed, err := svc.Purge(context.Background(), 30)
	require.NoError(t, err)
	require.Zero(t, removed, "recent events survive the purge")
	require.Len(t, repo.events, 1)
}
