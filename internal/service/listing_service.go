package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/repository"
	"github.com/proagent/activity-api/internal/utils"
)

// ListingService serves the read-only listing pages the pipeline observes.
// Domain-level views and filter usage are recorded alongside the automatic
// page-view capture.
type ListingService interface {
	ListAnnouncements(ctx context.Context, actorID uint, filter repository.AnnouncementFilter, reqCtx *utils.RequestContext) (dto.AnnouncementListResponse, error)
	GetAnnouncement(ctx context.Context, actorID, id uint, reqCtx *utils.RequestContext) (dto.AnnouncementResponse, error)
	GetCollection(ctx context.Context, actorID, id uint, reqCtx *utils.RequestContext) (dto.CollectionResponse, error)
}

type listingService struct {
	announcements repository.AnnouncementRepository
	collections   repository.CollectionRepository
	recorder      ActivityRecorder
	logger        zerolog.Logger
}

// NewListingService constructs the listing service.
func NewListingService(announcements repository.AnnouncementRepository, collections repository.CollectionRepository, recorder ActivityRecorder, logger zerolog.Logger) ListingService {
	return &listingService{
		announcements: announcements,
		collections:   collections,
		recorder:      recorder,
		logger:        logger.With().Str("component", "listing_service").Logger(),
	}
}

func (s *listingService) ListAnnouncements(ctx context.Context, actorID uint, filter repository.AnnouncementFilter, reqCtx *utils.RequestContext) (dto.AnnouncementListResponse, error) {
	filter.PageSize = clampPageSize(filter.PageSize)
	filter.Page = maxInt(filter.Page, 1)

	items, total, err := s.announcements.ListActive(ctx, filter)
	if err != nil {
		return dto.AnnouncementListResponse{}, err
	}

	if actorID > 0 && (filter.District != "" || filter.RoomsCount > 0) {
		params := map[string]interface{}{}
		if filter.District != "" {
			params["district"] = filter.District
		}
		if filter.RoomsCount > 0 {
			params["rooms_count"] = filter.RoomsCount
		}
		s.recorder.Record(ctx, ActivityEntry{
			AgentID:     actorID,
			Kind:        models.ActionFilterAnnouncements,
			Description: "Applied listing filters",
			Metadata:    map[string]interface{}{"filter_params": params},
			Request:     reqCtx,
		})
	}

	responses := make([]dto.AnnouncementResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewAnnouncementResponse(item))
	}

	pagination := dto.PaginationMeta{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}

	return dto.AnnouncementListResponse{Items: responses, Pagination: pagination}, nil
}

func (s *listingService) GetAnnouncement(ctx context.Context, actorID, id uint, reqCtx *utils.RequestContext) (dto.AnnouncementResponse, error) {
	item, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		return dto.AnnouncementResponse{}, err
	}

	if actorID > 0 {
		announcementID := item.ID
		s.recorder.Record(ctx, ActivityEntry{
			AgentID:               actorID,
			Kind:                  models.ActionViewAnnouncement,
			Description:           fmt.Sprintf("Viewed announcement %s", item.Label()),
			RelatedAnnouncementID: &announcementID,
			Request:               reqCtx,
		})
	}

	return dto.NewAnnouncementResponse(*item), nil
}

func (s *listingService) GetCollection(ctx context.Context, actorID, id uint, reqCtx *utils.RequestContext) (dto.CollectionResponse, error) {
	collection, err := s.collections.FindByID(ctx, id)
	if err != nil {
		return dto.CollectionResponse{}, err
	}

	if actorID > 0 {
		collectionID := collection.ID
		s.recorder.Record(ctx, ActivityEntry{
			AgentID:             actorID,
			Kind:                models.ActionViewCollection,
			Description:         fmt.Sprintf("Viewed collection %q", collection.Name),
			RelatedCollectionID: &collectionID,
			Request:             reqCtx,
		})
	}

	return dto.NewCollectionResponse(*collection), nil
}
