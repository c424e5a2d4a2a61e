package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"docscan/internal/service"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Event streams stay open until streamCtx is done or the client goes away.
func RegisterRoutes(streamCtx context.Context, app *fiber.App, db Pinger, coord service.DocumentCoordinator) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/documents", ListDocuments(coord))
	app.Get("/documents/events", DocumentEvents(streamCtx, coord, defaultHeartbeat))
	app.Get("/documents/:id", GetDocument(coord))
	app.Get("/documents/:id/content", DocumentContent(coord))
	app.Post("/documents", SaveDocument(coord))

	app.Post("/scans", CaptureScan(coord))
	app.Get("/scans/pending", PendingScan(coord))
	app.Put("/scans/pending", RecordScan(coord))
}

// HealthCheck checks DB connectivity only.
//
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
