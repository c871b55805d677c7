package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/proagent/activity-api/internal/utils"
)

// JWTProtected returns a middleware that validates bearer tokens and binds
// the authenticated agent and its session key to the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		agentID := extractAgentIDFromClaims(claims)
		if agentID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		c.Locals("agent_id", *agentID)

		if sessionKey := extractSessionKeyFromClaims(claims); sessionKey != "" {
			c.Locals("session_key", sessionKey)
		}

		return c.Next()
	}
}

// AgentID returns the authenticated agent bound to the request, or zero.
func AgentID(c *fiber.Ctx) uint {
	if value, ok := c.Locals("agent_id").(uint); ok {
		return value
	}
	return 0
}

// SessionKey returns the session key bound to the request, or empty.
func SessionKey(c *fiber.Ctx) string {
	if value, ok := c.Locals("session_key").(string); ok {
		return value
	}
	return ""
}

func extractAgentIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "agent_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeAgentID(value); err == nil {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeAgentID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractSessionKeyFromClaims(claims jwt.MapClaims) string {
	if value, ok := claims["sid"]; ok {
		if key, ok := value.(string); ok {
			return strings.TrimSpace(key)
		}
	}
	return ""
}
