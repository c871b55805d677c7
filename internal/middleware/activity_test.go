package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/proagent/activity-api/internal/middleware"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/service"
)

type capturingRecorder struct {
	entries []service.ActivityEntry
}

func (c *capturingRecorder) Record(ctx context.Context, entry service.ActivityEntry) {
	c.entries = append(c.entries, entry)
}

func newCaptureApp(recorder *capturingRecorder, authenticated bool) *fiber.App {
	app := fiber.New()
	if authenticated {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("agent_id", uint(7))
			c.Locals("session_key", "sess-1")
			return c.Next()
		})
	}
	app.Use(middleware.PageViewCapture(middleware.PageViewConfig{
		Recorder:         recorder,
		ExcludedPrefixes: []string{"/static/", "/ajax/", "/api/admin/"},
		Logger:           zerolog.New(io.Discard),
	}))
	app.All("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestPageViewCaptureRecordsAuthenticatedGet(t *testing.T) {
	recorder := &capturingRecorder{}
	app := newCaptureApp(recorder, true)

	req := httptest.NewRequest(http.MethodGet, "/announcements/42?from=list", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	require.Equal(t, uint(7), entry.AgentID)
	require.Equal(t, models.ActionViewPage, entry.Kind)
	require.Equal(t, "203.0.113.9", entry.Request.ClientIP)
	require.Equal(t, "sess-1", entry.Request.SessionKey)
	require.Equal(t, "announcement_detail", entry.Metadata["page_type"])

	params := entry.Metadata["get_params"].(map[string]interface{})
	require.Equal(t, "list", params["from"])
}

func TestPageViewCaptureSkipsAnonymous(t *testing.T) {
	recorder := &capturingRecorder{}
	app := newCaptureApp(recorder, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/announcements", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Empty(t, recorder.entries)
}

func TestPageViewCaptureSkipsNonRetrievalMethods(t *testing.T) {
	recorder := &capturingRecorder{}
	app := newCaptureApp(recorder, true)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp, err := app.Test(httptest.NewRequest(method, "/announcements", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	require.Empty(t, recorder.entries)

	resp, err := app.Test(httptest.NewRequest(http.MethodHead, "/announcements", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, recorder.entries, 1, "HEAD counts as retrieval")
}

func TestPageViewCaptureExclusionList(t *testing.T) {
	recorder := &capturingRecorder{}
	app := newCaptureApp(recorder, true)

	excluded := []string{"/static/app.css", "/ajax/suggest", "/api/admin/activity"}
	for _, path := range excluded {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	require.Empty(t, recorder.entries, "excluded prefixes are never captured")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staticfile", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, recorder.entries, 1, "exclusion is prefix-based, not substring-based")
}

func TestPageViewCaptureEmptyQueryOmitsParams(t *testing.T) {
	recorder := &capturingRecorder{}
	app := newCaptureApp(recorder, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, recorder.entries, 1)
	require.NotContains(t, recorder.entries[0].Metadata, "get_params")
	require.Equal(t, "profile", recorder.entries[0].Metadata["page_type"])
}
