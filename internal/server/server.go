package server

import (
	"context"
	"errors"
	"log"

	"biomeai-be/internal/bootstrap"
	"biomeai-be/internal/config"
	"biomeai-be/internal/pkg/serverutils"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/service"
	"biomeai-be/pkg/document"
	"biomeai-be/pkg/llm"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             30 * 1024 * 1024, // 30MB, reports are PDFs
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsAllowedOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(StatusFor))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, contract.ErrReportNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, contract.ErrThreadOwnedByAnotherUser):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrUploadInProgress):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUnsupportedFile), errors.Is(err, document.ErrDecode):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrGeneration):
		return fiber.StatusBadGateway
	}
	return 0
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")
	auth := serverutils.JwtMiddleware(cfg.Keys.JwtSecret)

	c.SystemController.RegisterRoutes(app, api, auth)
	c.ReportController.RegisterRoutes(api, auth)
}
