package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/repository"
	"github.com/proagent/activity-api/internal/utils"
)

// ProfileService serves the agent's own profile page.
type ProfileService interface {
	Get(ctx context.Context, agentID uint, reqCtx *utils.RequestContext) (dto.AgentResponse, error)
}

type profileService struct {
	agents   repository.AgentRepository
	recorder ActivityRecorder
	logger   zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(agents repository.AgentRepository, recorder ActivityRecorder, logger zerolog.Logger) ProfileService {
	return &profileService{
		agents:   agents,
		recorder: recorder,
		logger:   logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, agentID uint, reqCtx *utils.RequestContext) (dto.AgentResponse, error) {
	agent, err := s.agents.FindByID(ctx, agentID)
	if err != nil {
		return dto.AgentResponse{}, err
	}

	s.recorder.Record(ctx, ActivityEntry{
		AgentID:     agentID,
		Kind:        models.ActionViewProfile,
		Description: fmt.Sprintf("%s viewed own profile", agent.Label()),
		Request:     reqCtx,
	})

	return dto.NewAgentResponse(*agent), nil
}
