package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/observability"
	"github.com/proagent/activity-api/internal/repository"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// utf8BOM keeps spreadsheet tools from mangling non-ASCII export content.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportService renders activity and session data as flat CSV documents. All
// operations are pure reads over the stores plus a render step.
type ExportService interface {
	FlatCSV(ctx context.Context, req dto.ActivityListRequest, w io.Writer) (int, error)
	SummaryCSV(ctx context.Context, req dto.ActivityListRequest, w io.Writer) (int, error)
	SessionsCSV(ctx context.Context, w io.Writer) (int, error)
}

type exportService struct {
	events   repository.ActivityEventRepository
	sessions repository.SessionRepository
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewExportService constructs the export service.
func NewExportService(events repository.ActivityEventRepository, sessions repository.SessionRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		events:   events,
		sessions: sessions,
		logger:   logger.With().Str("component", "export_service").Logger(),
		tracer:   otel.Tracer("github.com/proagent/activity-api/internal/service/export"),
	}
}

// FlatCSV writes one row per event with every display field. Fields that fail
// to render degrade to a best-effort string; the row is still emitted.
func (s *exportService) FlatCSV(ctx context.Context, req dto.ActivityListRequest, w io.Writer) (int, error) {
	ctx, span := s.tracer.Start(ctx, "export.flat_csv")
	defer span.End()

	events, err := s.loadEvents(ctx, req)
	if err != nil {
		return 0, err
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	header := []string{
		"Agent", "Phone", "Action", "Description", "Timestamp", "Successful",
		"IP address", "User agent", "Related announcement", "Related collection",
		"Page URL", "Referrer", "Metadata",
	}
	if err := writer.Write(header); err != nil {
		return 0, err
	}

	for _, event := range events {
		if err := writer.Write(flatRow(event)); err != nil {
			return 0, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, err
	}

	observability.ExportRows().WithLabelValues("flat").Add(float64(len(events)))
	return len(events), nil
}

// SummaryCSV groups the filtered events by actor in memory and writes one row
// per actor. Actors with zero events never appear.
func (s *exportService) SummaryCSV(ctx context.Context, req dto.ActivityListRequest, w io.Writer) (int, error) {
	ctx, span := s.tracer.Start(ctx, "export.summary_csv")
	defer span.End()

	events, err := s.loadEvents(ctx, req)
	if err != nil {
		return 0, err
	}

	summaries := SummarizeByActor(events)

	if _, err := w.Write(utf8BOM); err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	header := []string{
		"Agent", "Phone", "Total", "Successful", "Failed", "Last seen", "Actions",
	}
	if err := writer.Write(header); err != nil {
		return 0, err
	}

	for _, summary := range summaries {
		row := []string{
			summary.AgentLabel,
			summary.Phone,
			fmt.Sprintf("%d", summary.Total),
			fmt.Sprintf("%d", summary.Successful),
			fmt.Sprintf("%d", summary.Failed),
			summary.LastSeen.Format(exportTimeLayout),
			strings.Join(summary.ActionLabels, ", "),
		}
		if err := writer.Write(row); err != nil {
			return 0, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, err
	}

	observability.ExportRows().WithLabelValues("summary").Add(float64(len(summaries)))
	return len(summaries), nil
}

// SessionsCSV writes one row per session record.
func (s *exportService) SessionsCSV(ctx context.Context, w io.Writer) (int, error) {
	ctx, span := s.tracer.Start(ctx, "export.sessions_csv")
	defer span.End()

	records, _, err := s.sessions.List(ctx, repository.SessionFilter{})
	if err != nil {
		return 0, err
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	header := []string{"Agent", "Phone", "Session key", "Login", "Logout", "Duration"}
	if err := writer.Write(header); err != nil {
		return 0, err
	}

	for _, record := range records {
		label, phone := "", ""
		if record.Agent != nil {
			label = record.Agent.Label()
			phone = record.Agent.Phone
		}

		logout, duration := "", ""
		if record.LogoutTime != nil {
			logout = record.LogoutTime.Format(exportTimeLayout)
		}
		if record.Duration != nil {
			duration = record.Duration.String()
		}

		row := []string{label, phone, record.SessionKey, record.LoginTime.Format(exportTimeLayout), logout, duration}
		if err := writer.Write(row); err != nil {
			return 0, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, err
	}

	observability.ExportRows().WithLabelValues("sessions").Add(float64(len(records)))
	return len(records), nil
}

// ActorSummary is one per-actor aggregation row.
type ActorSummary struct {
	AgentID      uint
	AgentLabel   string
	Phone        string
	Total        int64
	Successful   int64
	Failed       int64
	LastSeen     time.Time
	ActionLabels []string
}

// SummarizeByActor groups events by actor and computes per-actor counts, the
// success/failure split, the most recent timestamp and the distinct action
// labels observed. Output is ordered by agent id for stable exports.
func SummarizeByActor(events []models.ActivityEvent) []ActorSummary {
	byAgent := make(map[uint]*ActorSummary)
	labelSets := make(map[uint]map[string]struct{})

	for _, event := range events {
		summary, ok := byAgent[event.AgentID]
		if !ok {
			summary = &ActorSummary{AgentID: event.AgentID, LastSeen: event.CreatedAt}
			if event.Agent != nil {
				summary.AgentLabel = event.Agent.Label()
				summary.Phone = event.Agent.Phone
			}
			byAgent[event.AgentID] = summary
			labelSets[event.AgentID] = make(map[string]struct{})
		}

		summary.Total++
		if event.IsSuccessful {
			summary.Successful++
		} else {
			summary.Failed++
		}

		if event.CreatedAt.After(summary.LastSeen) {
			summary.LastSeen = event.CreatedAt
		}

		labelSets[event.AgentID][event.Kind.Label()] = struct{}{}
	}

	summaries := make([]ActorSummary, 0, len(byAgent))
	for agentID, summary := range byAgent {
		labels := make([]string, 0, len(labelSets[agentID]))
		for label := range labelSets[agentID] {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		summary.ActionLabels = labels
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].AgentID < summaries[j].AgentID })
	return summaries
}

func (s *exportService) loadEvents(ctx context.Context, req dto.ActivityListRequest) ([]models.ActivityEvent, error) {
	filter := repository.ActivityEventFilter{
		Kind:       models.ActionKind(strings.TrimSpace(req.Kind)),
		Successful: req.Successful,
		Since:      req.Since,
		Until:      req.Until,
	}
	if req.AgentID > 0 {
		filter.AgentID = &req.AgentID
	}

	return s.events.ListForExport(ctx, filter)
}

func flatRow(event models.ActivityEvent) []string {
	label, phone := "", ""
	if event.Agent != nil {
		label = event.Agent.Label()
		phone = event.Agent.Phone
	}

	successful := "No"
	if event.IsSuccessful {
		successful = "Yes"
	}

	announcement, collection := "", ""
	if event.RelatedAnnouncement != nil {
		announcement = event.RelatedAnnouncement.Label()
	}
	if event.RelatedCollection != nil {
		collection = event.RelatedCollection.Label()
	}

	return []string{
		label,
		phone,
		event.Kind.Label(),
		event.Description,
		event.CreatedAt.Format(exportTimeLayout),
		successful,
		event.ClientIP,
		event.UserAgent,
		announcement,
		collection,
		event.PageURL,
		event.Referrer,
		event.FormattedMetadata(),
	}
}
