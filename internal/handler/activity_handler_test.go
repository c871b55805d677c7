package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/handler"
	"github.com/proagent/activity-api/internal/service"
)

type mockActivityService struct {
	lastListRequest dto.ActivityListRequest
	listResponse    dto.ActivityListResponse
	createResponse  dto.ActivityResponse
	createErr       error
	recorded        []service.ActivityEntry
	purgedDays      int
	purgedCount     int64
}

func (m *mockActivityService) Record(ctx context.Context, entry service.ActivityEntry) {
	m.recorded = append(m.recorded, entry)
}

func (m *mockActivityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	m.lastListRequest = req
	return m.listResponse, nil
}

func (m *mockActivityService) Create(ctx context.Context, req dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if m.createErr != nil {
		return dto.ActivityResponse{}, m.createErr
	}
	return m.createResponse, nil
}

func (m *mockActivityService) Purge(ctx context.Context, olderThanDays int) (int64, error) {
	m.purgedDays = olderThanDays
	return m.purgedCount, nil
}

type mockExportService struct {
	flatRows    int
	summaryRows int
	err         error
}

func (m *mockExportService) FlatCSV(ctx context.Context, req dto.ActivityListRequest, w io.Writer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	_, _ = w.Write([]byte("\xEF\xBB\xBFAgent,Action\n"))
	return m.flatRows, nil
}

func (m *mockExportService) SummaryCSV(ctx context.Context, req dto.ActivityListRequest, w io.Writer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	_, _ = w.Write([]byte("\xEF\xBB\xBFAgent,Total\n"))
	return m.summaryRows, nil
}

func (m *mockExportService) SessionsCSV(ctx context.Context, w io.Writer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	_, _ = w.Write([]byte("\xEF\xBB\xBFAgent,Session key\n"))
	return 0, nil
}

func newActivityApp(activities *mockActivityService, exports *mockExportService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/admin/activity", func(c *fiber.Ctx) error {
		c.Locals("agent_id", uint(99))
		return c.Next()
	})
	handler.NewActivityHandler(activities, exports, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestActivityHandlerListPassesFilters(t *testing.T) {
	activities := &mockActivityService{}
	app := newActivityApp(activities, &mockExportService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/activity?agent_id=5&kind=login&successful=false&page=2&page_size=10", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, uint(5), activities.lastListRequest.AgentID)
	require.Equal(t, "login", activities.lastListRequest.Kind)
	require.NotNil(t, activities.lastListRequest.Successful)
	require.False(t, *activities.lastListRequest.Successful)
	require.Equal(t, 2, activities.lastListRequest.Page)
	require.Equal(t, 10, activities.lastListRequest.PageSize)
}

func TestActivityHandlerListRejectsBadQuery(t *testing.T) {
	app := newActivityApp(&mockActivityService{}, &mockExportService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/activity?agent_id=abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestActivityHandlerCreate(t *testing.T) {
	activities := &mockActivityService{createResponse: dto.ActivityResponse{ID: 1, Kind: "login"}}
	app := newActivityApp(activities, &mockExportService{})

	body, err := json.Marshal(dto.ActivityCreateRequest{AgentID: 1, Kind: "login"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/activity", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestActivityHandlerCreateRejectsInvalid(t *testing.T) {
	activities := &mockActivityService{createErr: errors.New("unknown action kind")}
	app := newActivityApp(activities, &mockExportService{})

	body, err := json.Marshal(dto.ActivityCreateRequest{AgentID: 1, Kind: "bogus"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/activity", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestActivityHandlerExportAuditsItself(t *testing.T) {
	activities := &mockActivityService{}
	app := newActivityApp(activities, &mockExportService{flatRows: 12})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/activity/export", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, []byte{0xEF, 0xBB, 0xBF}))

	require.Len(t, activities.recorded, 1, "the export itself is recorded")
	require.Equal(t, uint(99), activities.recorded[0].AgentID)
}

func TestActivityHandlerSummaryExport(t *testing.T) {
	activities := &mockActivityService{}
	app := newActivityApp(activities, &mockExportService{summaryRows: 3})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/activity/export/summary", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, activities.recorded, 1)
}

func TestActivityHandlerPurge(t *testing.T) {
	activities := &mockActivityService{purgedCount: 17}
	app := newActivityApp(activities, &mockExportService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/admin/activity/purge?older_than_days=90", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 90, activities.purgedDays)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/admin/activity/purge", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "missing window is rejected")
}
