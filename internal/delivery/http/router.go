package http

import (
	"io/fs"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/weatherlookup/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, registry *service.SessionRegistry, lookupLog *service.LookupLog, sessionTTL time.Duration) {
	handler := NewHandler(lookupLog)

	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   nethttp.FS(static),
		MaxAge: 3600,
	}))

	// Health check
	app.Get("/health", handler.HealthCheck)

	// Operator lookup log, not session scoped
	app.Get("/api/v1/history", handler.GetRecentLookups)

	withSession := sessionMiddleware(registry, sessionTTL)

	// Page
	app.Get("/", withSession, handler.Index)
	app.Post("/", withSession, handler.SubmitForm)

	// API v1 routes
	api := app.Group("/api/v1/lookup", withSession)
	{
		api.Get("/", handler.GetLookup)
		api.Put("/query", handler.UpdateQuery)
		api.Post("/", handler.SubmitLookup)
	}
}
