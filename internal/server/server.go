// Package server assembles the Fiber application from its dependencies.
package server

import (
	"time"

	"recipebox/internal/handlers"
	"recipebox/internal/metrics"
	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Options controls HTTP-level behavior.
type Options struct {
	// RequireAuth puts every record route behind a bearer token.
	RequireAuth bool
	BodyLimit   int
	CORSOrigins string
	// AccessLog enables per-request log lines.
	AccessLog bool
}

// Services are the business services the routes are served by.
type Services struct {
	Auth    *services.AuthService
	Recipes *services.RecipeService
	Caption *services.CaptionService
}

// New builds the Fiber app with middleware and all routes registered.
func New(svc Services, opts Options, log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "recipebox",
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${status} ${method} ${path} ${latency}\n",
			Output: log.WriterLevel(logrus.InfoLevel),
		}))
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	auth := middleware.OptionalAuth(svc.Auth)
	if opts.RequireAuth {
		auth = middleware.AuthRequired(svc.Auth)
	}

	handlers.NewAuthHandler(svc.Auth, log).RegisterRoutes(app)
	handlers.NewRecipeHandler(svc.Recipes, log).RegisterRoutes(app, auth)
	handlers.NewCaptionHandler(svc.Caption).RegisterRoutes(app)

	return app
}
