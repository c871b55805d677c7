package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/observability"
	"github.com/proagent/activity-api/internal/repository"
)

// SessionTracker opens and closes browsing session records.
type SessionTracker interface {
	// Track ensures an open record exists for the pair. Best-effort: failures
	// are logged, never returned.
	Track(ctx context.Context, agentID uint, sessionKey string)
	// Close finishes the open record for the pair, computing its duration.
	// Closing an absent or already-closed record is a no-op.
	Close(ctx context.Context, agentID uint, sessionKey string) (*models.SessionRecord, error)
}

// SessionService adds the admin query surface on top of the tracker.
type SessionService interface {
	SessionTracker
	List(ctx context.Context, req dto.SessionListRequest) (dto.SessionListResponse, error)
}

type sessionService struct {
	repo   repository.SessionRepository
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewSessionService constructs the session service.
func NewSessionService(repo repository.SessionRepository, logger zerolog.Logger) SessionService {
	return &sessionService{
		repo:   repo,
		logger: logger.With().Str("component", "session_service").Logger(),
		tracer: otel.Tracer("github.com/proagent/activity-api/internal/service/session"),
	}
}

func (s *sessionService) Track(ctx context.Context, agentID uint, sessionKey string) {
	if agentID == 0 || sessionKey == "" {
		return
	}

	record, created, err := s.repo.GetOrCreate(ctx, agentID, sessionKey, time.Now())
	if err != nil {
		s.logger.Error().Err(err).
			Uint("agent_id", agentID).
			Str("session_key", sessionKey).
			Msg("failed to track session")
		return
	}

	if created {
		observability.SessionsOpened().Inc()
		return
	}

	// A closed record means the framework reissued a spent key. Closed is
	// terminal, so the request is tracked against nothing.
	if !record.Open() {
		s.logger.Debug().
			Uint("agent_id", agentID).
			Str("session_key", sessionKey).
			Msg("request carried a closed session key")
	}
}

func (s *sessionService) Close(ctx context.Context, agentID uint, sessionKey string) (*models.SessionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "session.close")
	defer span.End()

	if agentID == 0 || sessionKey == "" {
		return nil, nil
	}

	record, err := s.repo.Close(ctx, agentID, sessionKey, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "close failed")
		return nil, err
	}

	if record != nil {
		observability.SessionsClosed().Inc()
	}

	return record, nil
}

func (s *sessionService) List(ctx context.Context, req dto.SessionListRequest) (dto.SessionListResponse, error) {
	filter := repository.SessionFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OpenOnly: req.OpenOnly,
	}
	if req.AgentID > 0 {
		filter.AgentID = &req.AgentID
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.SessionListResponse{}, err
	}

	responses := make([]dto.SessionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewSessionResponse(record))
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

	return dto.SessionListResponse{Items: responses, Pagination: pagination}, nil
}
