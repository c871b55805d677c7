package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/middleware"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/service"
	"github.com/proagent/activity-api/internal/utils"
)

// ActivityHandler exposes the admin activity log surface: listing, manual
// creation, CSV exports and bulk purge.
type ActivityHandler struct {
	activities service.ActivityService
	exports    service.ExportService
	logger     zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(activities service.ActivityService, exports service.ExportService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		exports:    exports,
		logger:     logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity routes to the admin router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/export", h.exportFlat)
	router.Get("/export/summary", h.exportSummary)
	router.Delete("/purge", h.purge)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	req, err := listRequestFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.activities.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity events")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity events")
	}

	return utils.SendSuccess(c, "activity events", response)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.activities.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create activity event")
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity event created", response)
}

func (h *ActivityHandler) exportFlat(c *fiber.Ctx) error {
	return h.export(c, "activity", func(req dto.ActivityListRequest, buf *bytes.Buffer) (int, error) {
		return h.exports.FlatCSV(c.Context(), req, buf)
	})
}

func (h *ActivityHandler) exportSummary(c *fiber.Ctx) error {
	return h.export(c, "activity_summary", func(req dto.ActivityListRequest, buf *bytes.Buffer) (int, error) {
		return h.exports.SummaryCSV(c.Context(), req, buf)
	})
}

func (h *ActivityHandler) export(c *fiber.Ctx, name string, render func(dto.ActivityListRequest, *bytes.Buffer) (int, error)) error {
	req, err := listRequestFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	var buf bytes.Buffer
	rows, err := render(req, &buf)
	if err != nil {
		h.logger.Error().Err(err).Str("export", name).Msg("export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "export failed")
	}

	// The export itself is an auditable action of the requesting operator.
	if operatorID := middleware.AgentID(c); operatorID > 0 {
		reqCtx := utils.ExtractRequestContext(c)
		h.activities.Record(c.Context(), service.ActivityEntry{
			AgentID:     operatorID,
			Kind:        models.ActionExportData,
			Description: fmt.Sprintf("Exported %s report (%d rows)", name, rows),
			Metadata:    map[string]interface{}{"file_info": map[string]interface{}{"report": name, "rows": rows, "format": "csv"}},
			Request:     &reqCtx,
		})
	}

	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

func (h *ActivityHandler) purge(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "older_than_days")
	if err != nil || days <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "older_than_days must be a positive integer")
	}

	removed, err := h.activities.Purge(c.Context(), days)
	if err != nil {
		h.logger.Error().Err(err).Msg("purge failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "purge failed")
	}

	return utils.SendSuccess(c, "activity events purged", fiber.Map{"removed": removed})
}

func listRequestFromQuery(c *fiber.Ctx) (dto.ActivityListRequest, error) {
	page, pageSize, err := pagination(c)
	if err != nil {
		return dto.ActivityListRequest{}, err
	}

	agentID, err := parseQueryInt(c, "agent_id")
	if err != nil || agentID < 0 {
		return dto.ActivityListRequest{}, fmt.Errorf("invalid agent id")
	}

	successful, err := parseQueryBool(c, "successful")
	if err != nil {
		return dto.ActivityListRequest{}, err
	}

	since, err := parseQueryTime(c, "since")
	if err != nil {
		return dto.ActivityListRequest{}, err
	}

	until, err := parseQueryTime(c, "until")
	if err != nil {
		return dto.ActivityListRequest{}, err
	}

	return dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		AgentID:    uint(agentID),
		Kind:       c.Query("kind"),
		Successful: successful,
		Since:      since,
		Until:      until,
	}, nil
}
