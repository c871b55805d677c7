package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequestContext carries the request-scoped facts attached to activity events.
type RequestContext struct {
	ClientIP   string
	UserAgent  string
	Referrer   string
	SessionKey string
	PageURL    string
	PageType   string
}

// ExtractRequestContext derives the request context from an inbound request.
// Missing headers become empty strings; nothing here ever fails.
func ExtractRequestContext(c *fiber.Ctx) RequestContext {
	sessionKey := ""
	if value, ok := c.Locals("session_key").(string); ok {
		sessionKey = value
	}

	return RequestContext{
		ClientIP:   ClientIP(c),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
		Referrer:   c.Get(fiber.HeaderReferer),
		SessionKey: sessionKey,
		PageURL:    c.BaseURL() + c.OriginalURL(),
		PageType:   ClassifyPageType(c.Path()),
	}
}

// ClientIP returns the first X-Forwarded-For entry when present, otherwise the
// direct peer address. The value is not validated as an IP.
func ClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	return c.IP()
}

// ClassifyPageType maps a request path onto a coarse page category for
// analytics. Rules are ordered and the first match wins; unmatched paths
// return the empty string.
func ClassifyPageType(path string) string {
	if path == "/" {
		return "main_page"
	}

	switch {
	case strings.HasPrefix(path, "/announcements/") || path == "/announcements":
		return classifyTree(path, "announcement", "announcements")
	case strings.HasPrefix(path, "/collections/") || path == "/collections":
		return classifyTree(path, "collection", "collections")
	case strings.HasPrefix(path, "/profile"):
		return "profile"
	case strings.HasPrefix(path, "/search"):
		return "search"
	case strings.HasPrefix(path, "/login"):
		return "login"
	case strings.HasPrefix(path, "/register"):
		return "register"
	case strings.HasPrefix(path, "/logout"):
		return "logout"
	}

	return ""
}

// classifyTree resolves the announcements/collections subtrees: create and
// edit segments override, a single extra segment is a detail page, anything
// else is the list.
func classifyTree(path, singular, plural string) string {
	if strings.Contains(path, "/create") {
		return "create_" + singular
	}
	if strings.Contains(path, "/edit") {
		return "edit_" + singular
	}

	trimmed := strings.Trim(path, "/")
	if segments := strings.Split(trimmed, "/"); len(segments) == 2 {
		return singular + "_detail"
	}

	return plural + "_list"
}
