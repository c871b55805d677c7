package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/service"
	"github.com/proagent/activity-api/internal/utils"
)

// PageViewConfig configures the automatic page-view capture hook.
type PageViewConfig struct {
	Recorder         service.ActivityRecorder
	ExcludedPrefixes []string
	Logger           zerolog.Logger
}

// PageViewCapture records a view_page event for authenticated retrieval
// requests on non-excluded paths. Capture happens during request processing,
// before the handler runs, so the event fires regardless of handler outcome.
// The recorder is fire-and-log, so capture can never block or alter the
// primary request.
func PageViewCapture(cfg PageViewConfig) fiber.Handler {
	logger := cfg.Logger.With().Str("component", "page_view_capture").Logger()

	return func(c *fiber.Ctx) error {
		agentID := AgentID(c)
		if agentID == 0 {
			return c.Next()
		}

		method := c.Method()
		if method != fiber.MethodGet && method != fiber.MethodHead {
			return c.Next()
		}

		path := c.Path()
		for _, prefix := range cfg.ExcludedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		reqCtx := utils.ExtractRequestContext(c)

		metadata := map[string]interface{}{}
		if queries := c.Queries(); len(queries) > 0 {
			params := make(map[string]interface{}, len(queries))
			for key, value := range queries {
				params[key] = value
			}
			metadata["get_params"] = params
		}
		if reqCtx.PageType != "" {
			metadata["page_type"] = reqCtx.PageType
		}

		cfg.Recorder.Record(c.Context(), service.ActivityEntry{
			AgentID:     agentID,
			Kind:        models.ActionViewPage,
			Description: fmt.Sprintf("Viewed page %s", path),
			Metadata:    metadata,
			Request:     &reqCtx,
		})

		logger.Debug().Uint("agent_id", agentID).Str("path", path).Msg("page view captured")

		return c.Next()
	}
}
