package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/middleware"
	"github.com/proagent/activity-api/internal/service"
	"github.com/proagent/activity-api/internal/utils"
)

// AuthHandler exposes login and logout endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	reqCtx := utils.ExtractRequestContext(c)
	response, err := h.service.Login(c.Context(), payload, &reqCtx)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("login failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
	}

	return utils.SendSuccess(c, "logged in", response)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	agentID := middleware.AgentID(c)
	if agentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	reqCtx := utils.ExtractRequestContext(c)
	if err := h.service.Logout(c.Context(), agentID, middleware.SessionKey(c), &reqCtx); err != nil {
		h.logger.Error().Err(err).Uint("agent_id", agentID).Msg("logout failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "logout failed")
	}

	return utils.SendSuccess(c, "logged out", nil)
}
