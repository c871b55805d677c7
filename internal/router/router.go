package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/proagent/activity-api/internal/config"
	"github.com/proagent/activity-api/internal/handler"
	"github.com/proagent/activity-api/internal/middleware"
	"github.com/proagent/activity-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	ActivityHandler    *handler.ActivityHandler
	SessionHandler     *handler.SessionHandler
	MaintenanceHandler *handler.MaintenanceHandler
	ListingHandler     *handler.ListingHandler
	JWTMiddleware      fiber.Handler
	SessionTracking    fiber.Handler
	PageViewCapture    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	passthrough := func(c *fiber.Ctx) error { return c.Next() }
	sessionTracking := deps.SessionTracking
	if sessionTracking == nil {
		sessionTracking = passthrough
	}
	pageViewCapture := deps.PageViewCapture
	if pageViewCapture == nil {
		pageViewCapture = passthrough
	}

	// Auth: login is public and rate limited, logout requires a token.
	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.Post("/login", middleware.RateLimit("login", 10, time.Minute), deps.AuthHandler.Login)
		auth.Post("/logout", jwtMiddleware, deps.AuthHandler.Logout)
	}

	// Admin surface sits behind auth but outside the capture pipeline; it is
	// registered ahead of the page group so admin requests never reach the
	// capture middleware, and its paths sit on the exclusion list besides.
	admin := app.Group("/api/admin", jwtMiddleware)

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activity"))
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(admin.Group("/sessions"))
	}
	if deps.MaintenanceHandler != nil {
		deps.MaintenanceHandler.Register(admin.Group("/maintenance"))
	}

	// Page routes carry the full capture pipeline: auth resolution, session
	// upkeep, then the automatic page-view hook.
	if deps.ListingHandler != nil {
		pages := app.Group("/", jwtMiddleware, sessionTracking, pageViewCapture)
		deps.ListingHandler.Register(pages)
	}
}
