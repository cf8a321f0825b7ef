package controller

import (
	"biomeai-be/internal/dto"
	"biomeai-be/internal/pkg/logger"
	"biomeai-be/internal/pkg/serverutils"
	"biomeai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ISystemController interface {
	RegisterRoutes(app *fiber.App, api fiber.Router, auth fiber.Handler)
	Health(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
}

type systemController struct {
	stats  service.IStatsService
	logger logger.ILogger
}

func NewSystemController(stats service.IStatsService, log logger.ILogger) ISystemController {
	return &systemController{stats: stats, logger: log}
}

func (c *systemController) RegisterRoutes(app *fiber.App, api fiber.Router, auth fiber.Handler) {
	app.Get("/", c.Health)
	app.Get("/health", c.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api.Get("/stats/v1", auth, c.Stats)
	api.Get("/admin/v1/logs", auth, c.Logs)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	status := c.stats.Health(ctx.UserContext())
	code := fiber.StatusOK
	if status.Status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return ctx.Status(code).JSON(serverutils.SuccessResponse("BiomeAI service", status))
}

func (c *systemController) Stats(ctx *fiber.Ctx) error {
	stats, err := c.stats.Usage(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get stats", &dto.UsageStatsResponse{
		Users:        stats.Users,
		Reports:      stats.Reports,
		Messages:     stats.Messages,
		TotalCostUsd: stats.TotalCostUsd,
	}))
}

func (c *systemController) Logs(ctx *fiber.Ctx) error {
	var req dto.LogQueryRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	entries, err := c.logger.GetLogs(logger.LogQuery{
		Level:  req.Level,
		Module: req.Module,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get logs", entries))
}
