package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/repository"
	"github.com/proagent/activity-api/internal/utils"
)

// ErrInvalidCredentials is returned when the phone/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates agents and emits the login/logout audit events.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, reqCtx *utils.RequestContext) (dto.LoginResponse, error)
	Logout(ctx context.Context, agentID uint, sessionKey string, reqCtx *utils.RequestContext) error
}

type authService struct {
	agents    repository.AgentRepository
	recorder  ActivityRecorder
	sessions  SessionTracker
	validator *validator.Validate
	secret    string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAuthService constructs the auth service.
func NewAuthService(agents repository.AgentRepository, recorder ActivityRecorder, sessions SessionTracker, validator *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		agents:    agents,
		recorder:  recorder,
		sessions:  sessions,
		validator: validator,
		secret:    secret,
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		tracer:    otel.Tracer("github.com/proagent/activity-api/internal/service/auth"),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, reqCtx *utils.RequestContext) (dto.LoginResponse, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	phone := strings.TrimSpace(req.Phone)
	agent, err := s.agents.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "unknown phone")
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		span.RecordError(err)
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "password mismatch")
		s.recorder.Record(ctx, ActivityEntry{
			AgentID:      agent.ID,
			Kind:         models.ActionLogin,
			Description:  fmt.Sprintf("Failed login attempt for %s", agent.Label()),
			Request:      reqCtx,
			ErrorMessage: "password mismatch",
		})
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	sessionKey := uuid.NewString()
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"sub":  agent.ID,
		"sid":  sessionKey,
		"name": agent.Label(),
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		span.RecordError(err)
		return dto.LoginResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.sessions.Track(ctx, agent.ID, sessionKey)

	loginCtx := withSessionKey(reqCtx, sessionKey)
	s.recorder.Record(ctx, ActivityEntry{
		AgentID:     agent.ID,
		Kind:        models.ActionLogin,
		Description: fmt.Sprintf("%s logged in", agent.Label()),
		Metadata:    map[string]interface{}{"login_time": time.Now().Format(time.RFC3339)},
		Request:     loginCtx,
	})

	return dto.LoginResponse{
		Token:      token,
		SessionKey: sessionKey,
		AgentID:    agent.ID,
		FullName:   agent.FullName,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, agentID uint, sessionKey string, reqCtx *utils.RequestContext) error {
	ctx, span := s.tracer.Start(ctx, "auth.logout")
	defer span.End()

	record, err := s.sessions.Close(ctx, agentID, sessionKey)
	if err != nil {
		// Session bookkeeping must not block logout; the event below still
		// documents the action.
		span.RecordError(err)
		s.logger.Error().Err(err).Uint("agent_id", agentID).Msg("failed to close session on logout")
	}

	metadata := map[string]interface{}{"logout_time": time.Now().Format(time.RFC3339)}
	if record != nil && record.Duration != nil {
		metadata["session_duration"] = record.Duration.String()
	}

	s.recorder.Record(ctx, ActivityEntry{
		AgentID:     agentID,
		Kind:        models.ActionLogout,
		Description: "Logged out",
		Metadata:    metadata,
		Request:     reqCtx,
	})

	return nil
}

// withSessionKey returns a copy of the request context carrying the freshly
// minted session key; at login time the inbound request does not have one yet.
func withSessionKey(reqCtx *utils.RequestContext, sessionKey string) *utils.RequestContext {
	if reqCtx == nil {
		return &utils.RequestContext{SessionKey: sessionKey}
	}
	copied := *reqCtx
	copied.SessionKey = sessionKey
	return &copied
}
