package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/service"
	"github.com/proagent/activity-api/internal/utils"
)

// MaintenanceHandler exposes operator maintenance endpoints: the stale listing
// archive sweep and reference cache management.
type MaintenanceHandler struct {
	archive service.ArchiveService
	cache   service.ReferenceCacheService
	logger  zerolog.Logger
}

// NewMaintenanceHandler constructs the handler.
func NewMaintenanceHandler(archive service.ArchiveService, cache service.ReferenceCacheService, logger zerolog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		archive: archive,
		cache:   cache,
		logger:  logger.With().Str("component", "maintenance_handler").Logger(),
	}
}

// Register attaches maintenance routes to the admin router group.
func (h *MaintenanceHandler) Register(router fiber.Router) {
	router.Post("/archive", h.runArchive)
	router.Post("/cache/clear", h.clearCache)
	router.Post("/cache/warmup", h.warmupCache)
	router.Get("/cache/stats", h.cacheStats)
}

func (h *MaintenanceHandler) runArchive(c *fiber.Ctx) error {
	var payload dto.ArchiveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	response, err := h.archive.ArchiveStale(c.Context(), payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("archive sweep failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "archive sweep failed")
	}

	return utils.SendSuccess(c, "archive sweep completed", response)
}

func (h *MaintenanceHandler) clearCache(c *fiber.Ctx) error {
	removed, err := h.cache.Clear(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("cache clear failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "cache clear failed")
	}

	return utils.SendSuccess(c, "cache cleared", fiber.Map{"removed": removed})
}

func (h *MaintenanceHandler) warmupCache(c *fiber.Ctx) error {
	warmed, err := h.cache.Warmup(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("cache warmup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "cache warmup failed")
	}

	return utils.SendSuccess(c, "cache warmed", fiber.Map{"keys": warmed})
}

func (h *MaintenanceHandler) cacheStats(c *fiber.Ctx) error {
	stats, err := h.cache.Stats(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("cache stats failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "cache stats failed")
	}

	return utils.SendSuccess(c, "cache stats", stats)
}
