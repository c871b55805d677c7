package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/observability"
	"github.com/proagent/activity-api/internal/repository"
	"github.com/proagent/activity-api/internal/utils"
)

// ActivityEntry captures the details required to record one activity event.
type ActivityEntry struct {
	AgentID               uint
	Kind                  models.ActionKind
	Description           string
	Metadata              map[string]interface{}
	Request               *utils.RequestContext
	RelatedAnnouncementID *uint
	RelatedCollectionID   *uint
	IsSuccessful          *bool
	ErrorMessage          string
}

// ActivityRecorder is the fire-and-log side channel used by request hooks and
// domain services. Record never returns an error and never panics: the primary
// operation being described must not fail because recording failed.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService exposes methods to record and query activity events.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	Create(ctx context.Context, req dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	Purge(ctx context.Context, olderThanDays int) (int64, error)
}

type activityService struct {
	repo             repository.ActivityEventRepository
	validator        *validator.Validate
	logger           zerolog.Logger
	tracer           trace.Tracer
	metadataMaxBytes int
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityEventRepository, validator *validator.Validate, metadataMaxBytes int, logger zerolog.Logger) ActivityService {
	if metadataMaxBytes <= 0 {
		metadataMaxBytes = 8192
	}
	return &activityService{
		repo:             repo,
		validator:        validator,
		logger:           logger.With().Str("component", "activity_service").Logger(),
		tracer:           otel.Tracer("github.com/proagent/activity-api/internal/service/activity"),
		metadataMaxBytes: metadataMaxBytes,
	}
}

// Record persists one event. Every failure mode is terminal here: the entry is
// logged, counted and dropped. There is no retry and no partial state.
func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	ctx, span := s.tracer.Start(ctx, "activity.record")
	defer span.End()

	event, err := s.buildEvent(entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid entry")
		observability.ActivityEvents().WithLabelValues(string(entry.Kind), "dropped").Inc()
		s.logger.Warn().Err(err).
			Uint("agent_id", entry.AgentID).
			Str("kind", string(entry.Kind)).
			Msg("activity entry rejected")
		return
	}

	if err := s.repo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.ActivityEvents().WithLabelValues(string(event.Kind), "dropped").Inc()
		s.logger.Error().Err(err).
			Uint("agent_id", event.AgentID).
			Str("kind", string(event.Kind)).
			Msg("failed to persist activity event")
		return
	}

	observability.ActivityEvents().WithLabelValues(string(event.Kind), "recorded").Inc()
}

// Create is the validating variant used by the admin surface; unlike Record it
// surfaces validation and persistence errors to the caller.
func (s *activityService) Create(ctx context.Context, req dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	entry := ActivityEntry{
		AgentID:               req.AgentID,
		Kind:                  models.ActionKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Description:           req.Description,
		Metadata:              req.Metadata,
		RelatedAnnouncementID: req.RelatedAnnouncementID,
		RelatedCollectionID:   req.RelatedCollectionID,
		IsSuccessful:          req.IsSuccessful,
		ErrorMessage:          req.ErrorMessage,
	}

	event, err := s.buildEvent(entry)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity event")
		return dto.ActivityResponse{}, err
	}

	observability.ActivityEvents().WithLabelValues(string(event.Kind), "recorded").Inc()
	return dto.NewActivityResponse(*event), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityEventFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Kind:       models.ActionKind(strings.TrimSpace(req.Kind)),
		Successful: req.Successful,
		Since:      req.Since,
		Until:      req.Until,
	}
	if req.AgentID > 0 {
		filter.AgentID = &req.AgentID
	}

	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.NewActivityResponse(event))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: responses, Pagination: pagination}, nil
}

// Purge is the operator bulk deletion; there is no other way to remove events.
func (s *activityService) Purge(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("purge window must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	removed, err := s.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("removed", removed).Int("older_than_days", olderThanDays).Msg("activity events purged")
	return removed, nil
}

func (s *activityService) buildEvent(entry ActivityEntry) (*models.ActivityEvent, error) {
	if entry.AgentID == 0 {
		return nil, fmt.Errorf("agent id is required")
	}
	if !entry.Kind.Valid() {
		return nil, fmt.Errorf("unknown action kind %q", entry.Kind)
	}

	successful := true
	if entry.IsSuccessful != nil {
		successful = *entry.IsSuccessful
	} else if entry.ErrorMessage != "" {
		successful = false
	}

	errorMessage := entry.ErrorMessage
	if successful && errorMessage != "" {
		s.logger.Warn().Str("kind", string(entry.Kind)).Msg("dropping error message on successful event")
		errorMessage = ""
	}

	event := &models.ActivityEvent{
		AgentID:               entry.AgentID,
		Kind:                  entry.Kind,
		Description:           entry.Description,
		Metadata:              s.prepareMetadata(entry.Metadata),
		RelatedAnnouncementID: entry.RelatedAnnouncementID,
		RelatedCollectionID:   entry.RelatedCollectionID,
		IsSuccessful:          successful,
		ErrorMessage:          errorMessage,
	}

	if entry.Request != nil {
		event.ClientIP = entry.Request.ClientIP
		event.UserAgent = entry.Request.UserAgent
		event.SessionKey = entry.Request.SessionKey
		event.PageURL = entry.Request.PageURL
		event.Referrer = entry.Request.Referrer
	}

	return event, nil
}

// prepareMetadata masks sensitive keys, schema-checks the well-known keys and
// enforces the configured size bound. It always returns a usable map; bad keys
// are dropped rather than failing the event.
func (s *activityService) prepareMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if len(metadata) == 0 {
		return datatypes.JSONMap{}
	}

	prepared := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") {
			prepared[key] = "***"
			continue
		}

		if err := validateMetadataKey(key, value); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("dropping invalid metadata key")
			continue
		}

		prepared[key] = value
	}

	serialized, err := json.Marshal(prepared)
	if err != nil {
		s.logger.Warn().Err(err).Msg("metadata not serializable, replacing with marker")
		return datatypes.JSONMap{"unserializable": true}
	}

	if len(serialized) > s.metadataMaxBytes {
		s.logger.Warn().Int("size", len(serialized)).Int("limit", s.metadataMaxBytes).Msg("metadata over size bound, truncating")
		return datatypes.JSONMap{"truncated": true, "original_size": len(serialized)}
	}

	return prepared
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return 25
	}
	if pageSize > 200 {
		return 200
	}
	return pageSize
}
