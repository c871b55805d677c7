package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/proagent/activity-api/internal/service"
)

// SessionTracking ensures an open session record exists for every
// authenticated request that carries a session key. Tracking is idempotent
// and best-effort; it never blocks the request.
func SessionTracking(tracker service.SessionTracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		agentID := AgentID(c)
		sessionKey := SessionKey(c)

		if agentID > 0 && sessionKey != "" {
			tracker.Track(c.Context(), agentID, sessionKey)
		}

		return c.Next()
	}
}
