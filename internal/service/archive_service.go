package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/repository"
)

// ArchiveService runs the stale-listing archive sweep. Each archived listing
// emits an auto-archive event through the recorder on behalf of its owner.
type ArchiveService interface {
	ArchiveStale(ctx context.Context, req dto.ArchiveRequest) (dto.ArchiveResponse, error)
}

type archiveService struct {
	announcements repository.AnnouncementRepository
	recorder      ActivityRecorder
	defaultDays   int
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewArchiveService constructs the archive service.
func NewArchiveService(announcements repository.AnnouncementRepository, recorder ActivityRecorder, defaultDays int, logger zerolog.Logger) ArchiveService {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &archiveService{
		announcements: announcements,
		recorder:      recorder,
		defaultDays:   defaultDays,
		logger:        logger.With().Str("component", "archive_service").Logger(),
		tracer:        otel.Tracer("github.com/proagent/activity-api/internal/service/archive"),
	}
}

func (s *archiveService) ArchiveStale(ctx context.Context, req dto.ArchiveRequest) (dto.ArchiveResponse, error) {
	ctx, span := s.tracer.Start(ctx, "maintenance.archive_stale")
	defer span.End()

	days := req.Days
	if days <= 0 {
		days = s.defaultDays
	}
	span.SetAttributes(attribute.Int("archive.days", days), attribute.Bool("archive.dry_run", req.DryRun))

	cutoff := time.Now().AddDate(0, 0, -days)
	stale, err := s.announcements.ListStale(ctx, cutoff)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing stale announcements failed")
		return dto.ArchiveResponse{}, err
	}

	response := dto.ArchiveResponse{
		Candidates: len(stale),
		DryRun:     req.DryRun,
		CutoffDays: days,
	}

	if req.DryRun {
		for _, item := range stale {
			response.IDs = append(response.IDs, item.ID)
		}
		return response, nil
	}

	for _, item := range stale {
		if err := s.announcements.Archive(ctx, item.ID); err != nil {
			s.logger.Error().Err(err).Uint("announcement_id", item.ID).Msg("failed to archive announcement")
			continue
		}

		response.Archived++
		response.IDs = append(response.IDs, item.ID)

		announcementID := item.ID
		s.recorder.Record(ctx, ActivityEntry{
			AgentID:               item.AgentID,
			Kind:                  models.ActionAutoArchive,
			Description:           fmt.Sprintf("Announcement #%d archived automatically (older than %d days)", item.ID, days),
			RelatedAnnouncementID: &announcementID,
		})
	}

	s.logger.Info().
		Int("candidates", response.Candidates).
		Int("archived", response.Archived).
		Int("days", days).
		Msg("archive sweep completed")

	return response, nil
}
