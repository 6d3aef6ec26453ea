package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lumio-edu/lumio-api/internal/config"
	"github.com/lumio-edu/lumio-api/internal/handler"
	"github.com/lumio-edu/lumio-api/internal/middleware"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	ClassHandler        *handler.ClassHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	QuizHandler         *handler.QuizHandler
	GradeHandler        *handler.GradeHandler
	AssistantHandler    *handler.AssistantHandler
	ExportHandler       *handler.ExportHandler
	NotificationHandler *handler.NotificationHandler
	UploadHandler       *handler.UploadHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		public := api.Group("/auth")
		protected := api.Group("/auth", jwtMiddleware)
		deps.AuthHandler.Register(public, protected)

		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AuthHandler.RegisterAdmin(admin)
	}

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware)
		deps.ClassHandler.Register(classes)

		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.RegisterClassScoped(classes)
		}
		if deps.QuizHandler != nil {
			deps.QuizHandler.RegisterClassScoped(classes)
		}
		if deps.GradeHandler != nil {
			deps.GradeHandler.RegisterClassScoped(classes)
		}
		if deps.ExportHandler != nil {
			deps.ExportHandler.RegisterClassScoped(classes)
		}
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterAssignmentScoped(assignments)
		}
		if deps.GradeHandler != nil {
			deps.GradeHandler.RegisterAssignmentScoped(assignments)
		}
	}

	if deps.QuizHandler != nil {
		quizzes := api.Group("/quizzes", jwtMiddleware)
		deps.QuizHandler.Register(quizzes)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterQuizScoped(quizzes)
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.GradeHandler != nil {
		grades := api.Group("/grades", jwtMiddleware)
		deps.GradeHandler.Register(grades)
	}

	if deps.AssistantHandler != nil {
		assistant := api.Group("/assistant", jwtMiddleware, middleware.RateLimit("assistant", 20, time.Minute))
		deps.AssistantHandler.Register(assistant)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.UploadHandler.Register(uploads)
	}
}
