package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/service"
	"github.com/proagent/activity-api/internal/utils"
)

// SessionHandler exposes the admin session audit surface.
type SessionHandler struct {
	sessions service.SessionService
	exports  service.ExportService
	logger   zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions service.SessionService, exports service.ExportService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		exports:  exports,
		logger:   logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session routes to the admin router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/export", h.export)
}

func (h *SessionHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	agentID, err := parseQueryInt(c, "agent_id")
	if err != nil || agentID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid agent id")
	}

	req := dto.SessionListRequest{
		Page:     page,
		PageSize: pageSize,
		AgentID:  uint(agentID),
		OpenOnly: c.QueryBool("open_only"),
	}

	response, err := h.sessions.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list sessions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sessions")
	}

	return utils.SendSuccess(c, "sessions", response)
}

func (h *SessionHandler) export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if _, err := h.exports.SessionsCSV(c.Context(), &buf); err != nil {
		h.logger.Error().Err(err).Msg("session export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "export failed")
	}

	filename := fmt.Sprintf("sessions_%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}
