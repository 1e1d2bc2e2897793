package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rgpv-tpo/placement-api/internal/config"
	"github.com/rgpv-tpo/placement-api/internal/handler"
	"github.com/rgpv-tpo/placement-api/internal/middleware"
	"github.com/rgpv-tpo/placement-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CafHandler           *handler.CafHandler
	InternshipHandler    *handler.InternshipHandler
	PlacementHandler     *handler.PlacementHandler
	MockInterviewHandler *handler.MockInterviewHandler
	DocumentHandler      *handler.DocumentHandler
	NotificationHandler  *handler.AdminNotificationHandler
	AdminStudentHandler  *handler.AdminStudentHandler
	AdminDriveHandler    *handler.AdminDriveHandler
	AdminMockHandler     *handler.AdminMockHandler
	EventsHandler        *handler.EventsHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Student surface: the CAF itself is reachable in every state, the
	// dependent features stay behind their approval gate checks.
	student := app.Group("/api/student", jwtMiddleware, middleware.RequireRole("student"))
	if deps.CafHandler != nil {
		deps.CafHandler.Register(student.Group("/caf"))
	}
	if deps.InternshipHandler != nil {
		deps.InternshipHandler.Register(student.Group("/internships"))
	}
	if deps.PlacementHandler != nil {
		deps.PlacementHandler.Register(student.Group("/placements"))
	}
	if deps.MockInterviewHandler != nil {
		deps.MockInterviewHandler.Register(student.Group("/mock-interviews"))
	}
	if deps.DocumentHandler != nil {
		documents := student.Group("/documents", middleware.RateLimit("student-documents", 10, time.Minute))
		deps.DocumentHandler.Register(documents)
	}

	// Admin surface.
	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole("admin"))
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(admin.Group("/notifications"))
	}
	if deps.AdminStudentHandler != nil {
		deps.AdminStudentHandler.Register(admin.Group("/students"))
	}
	if deps.AdminDriveHandler != nil {
		deps.AdminDriveHandler.Register(admin.Group("/drives"))
	}
	if deps.AdminMockHandler != nil {
		mockGroup := admin.Group("/mock-results", middleware.RateLimit("admin-mock-import", 5, time.Minute))
		deps.AdminMockHandler.Register(mockGroup)
	}
	if deps.EventsHandler != nil {
		deps.EventsHandler.Register(admin.Group("/events"))
	}
}
