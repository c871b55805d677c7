package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/repository"
)

// Cache keys for the static reference datasets used by search forms.
const (
	cacheKeyDistricts     = "reference:districts:v1"
	cacheKeyBuildingTypes = "reference:building_types:v1"
)

var referenceCacheKeys = []string{cacheKeyDistricts, cacheKeyBuildingTypes}

// ReferenceCacheService manages the redis cache in front of static reference
// data (districts, building types). Operators can clear, warm and inspect it.
type ReferenceCacheService interface {
	Clear(ctx context.Context) (int, error)
	Warmup(ctx context.Context) (int, error)
	Stats(ctx context.Context) (dto.CacheStatsResponse, error)
}

type referenceCacheService struct {
	announcements repository.AnnouncementRepository
	cache         *redis.Client
	ttl           time.Duration
	logger        zerolog.Logger
}

// NewReferenceCacheService constructs the reference cache service.
func NewReferenceCacheService(announcements repository.AnnouncementRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReferenceCacheService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &referenceCacheService{
		announcements: announcements,
		cache:         cache,
		ttl:           ttl,
		logger:        logger.With().Str("component", "reference_cache_service").Logger(),
	}
}

func (s *referenceCacheService) Clear(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, fmt.Errorf("cache is not configured")
	}

	removed, err := s.cache.Del(ctx, referenceCacheKeys...).Result()
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("removed", removed).Msg("reference cache cleared")
	return int(removed), nil
}

func (s *referenceCacheService) Warmup(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, fmt.Errorf("cache is not configured")
	}

	districts, err := s.announcements.DistinctDistricts(ctx)
	if err != nil {
		return 0, err
	}

	buildingTypes, err := s.announcements.DistinctBuildingTypes(ctx)
	if err != nil {
		return 0, err
	}

	warmed := 0
	for key, values := range map[string][]string{
		cacheKeyDistricts:     districts,
		cacheKeyBuildingTypes: buildingTypes,
	} {
		payload, err := json.Marshal(values)
		if err != nil {
			return warmed, err
		}
		if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			return warmed, err
		}
		warmed++
	}

	s.logger.Info().Int("keys", warmed).Msg("reference cache warmed")
	return warmed, nil
}

func (s *referenceCacheService) Stats(ctx context.Context) (dto.CacheStatsResponse, error) {
	if s.cache == nil {
		return dto.CacheStatsResponse{}, fmt.Errorf("cache is not configured")
	}

	response := dto.CacheStatsResponse{}
	for _, key := range referenceCacheKeys {
		stat := dto.CacheKeyStat{Key: key}

		payload, err := s.cache.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
			// absent key, leave zero values
		case err != nil:
			return dto.CacheStatsResponse{}, err
		default:
			stat.Present = true
			var values []string
			if err := json.Unmarshal([]byte(payload), &values); err == nil {
				stat.Items = len(values)
			}
			if ttl, err := s.cache.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				stat.TTLSecs = ttl.Seconds()
			}
		}

		response.Keys = append(response.Keys, stat)
	}

	return response, nil
}
