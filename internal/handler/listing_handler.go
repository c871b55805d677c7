package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/proagent/activity-api/internal/middleware"
	"github.com/proagent/activity-api/internal/repository"
	"github.com/proagent/activity-api/internal/service"
	"github.com/proagent/activity-api/internal/utils"
)

// ListingHandler serves the read-only pages the activity pipeline observes:
// announcement listing and detail, collection detail and the agent profile.
type ListingHandler struct {
	listings service.ListingService
	profiles service.ProfileService
	logger   zerolog.Logger
}

// NewListingHandler constructs the handler.
func NewListingHandler(listings service.ListingService, profiles service.ProfileService, logger zerolog.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		profiles: profiles,
		logger:   logger.With().Str("component", "listing_handler").Logger(),
	}
}

// Register attaches the page routes to the authenticated router group.
func (h *ListingHandler) Register(router fiber.Router) {
	router.Get("/announcements", h.listAnnouncements)
	router.Get("/announcements/:id", h.getAnnouncement)
	router.Get("/collections/:id", h.getCollection)
	router.Get("/profile", h.getProfile)
}

func (h *ListingHandler) listAnnouncements(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	roomsCount, err := parseQueryInt(c, "rooms_count")
	if err != nil || roomsCount < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid rooms count")
	}

	filter := repository.AnnouncementFilter{
		Page:       page,
		PageSize:   pageSize,
		District:   c.Query("district"),
		RoomsCount: roomsCount,
	}

	reqCtx := utils.ExtractRequestContext(c)
	response, err := h.listings.ListAnnouncements(c.Context(), middleware.AgentID(c), filter, &reqCtx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list announcements")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list announcements")
	}

	return utils.SendSuccess(c, "announcements", response)
}

func (h *ListingHandler) getAnnouncement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	reqCtx := utils.ExtractRequestContext(c)
	response, err := h.listings.GetAnnouncement(c.Context(), middleware.AgentID(c), uint(id), &reqCtx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
		}
		h.logger.Error().Err(err).Int("announcement_id", id).Msg("failed to load announcement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load announcement")
	}

	return utils.SendSuccess(c, "announcement", response)
}

func (h *ListingHandler) getCollection(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid collection id")
	}

	reqCtx := utils.ExtractRequestContext(c)
	response, err := h.listings.GetCollection(c.Context(), middleware.AgentID(c), uint(id), &reqCtx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "collection not found")
		}
		h.logger.Error().Err(err).Int("collection_id", id).Msg("failed to load collection")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load collection")
	}

	return utils.SendSuccess(c, "collection", response)
}

func (h *ListingHandler) getProfile(c *fiber.Ctx) error {
	agentID := middleware.AgentID(c)
	if agentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	reqCtx := utils.ExtractRequestContext(c)
	response, err := h.profiles.Get(c.Context(), agentID, &reqCtx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "agent not found")
		}
		h.logger.Error().Err(err).Uint("agent_id", agentID).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile", response)
}
