package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/proagent/activity-api/internal/models"
)

func newCacheFixture(t *testing.T) (ReferenceCacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memoryAnnouncementRepo{items: []models.Announcement{
		{ID: 1, AgentID: 1, District: "Almaly", BuildingType: "brick"},
		{ID: 2, AgentID: 1, District: "Bostandyk", BuildingType: "panel"},
		{ID: 3, AgentID: 2, District: "Almaly", BuildingType: "brick"},
	}}

	return NewReferenceCacheService(repo, client, time.Hour, testLogger()), mr
}

func TestReferenceCacheWarmup(t *testing.T) {
	svc, mr := newCacheFixture(t)

	warmed, err := svc.Warmup(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, warmed)

	require.True(t, mr.Exists("reference:districts:v1"))
	require.True(t, mr.Exists("reference:building_types:v1"))

	payload, err := mr.Get("reference:districts:v1")
	require.NoError(t, err)
	require.Contains(t, payload, "Almaly")
	require.Contains(t, payload, "Bostandyk")
}

func TestReferenceCacheStats(t *testing.T) {
	svc, _ := newCacheFixture(t)
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.Keys, 2)
	for _, key := range stats.Keys {
		require.False(t, key.Present, "cold cache reports absent keys")
	}

	_, err = svc.Warmup(ctx)
	require.NoError(t, err)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	for _, key := range stats.Keys {
		require.True(t, key.Present)
		require.Equal(t, 2, key.Items)
		require.Greater(t, key.TTLSecs, float64(0))
	}
}

func TestReferenceCacheClear(t *testing.T) {
	svc, mr := newCacheFixture(t)
	ctx := context.Background()

	_, err := svc.Warmup(ctx)
	require.NoError(t, err)

	removed, err := svc.Clear(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.False(t, mr.Exists("reference:districts:v1"))

	removed, err = svc.Clear(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestReferenceCacheRequiresClient(t *testing.T) {
	svc := NewReferenceCacheService(&memoryAnnouncementRepo{}, nil, time.Hour, testLogger())

	_, err := svc.Clear(context.Background())
	require.Error(t, err)
	_, err = svc.Warmup(context.Background())
	require.Error(t, err)
	_, err = svc.Stats(context.Background())
	require.Error(t, err)
}
