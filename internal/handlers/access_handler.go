package handlers

import (
	"dataroom-service/internal/middleware"
	"dataroom-service/internal/models"
	"dataroom-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type AccessHandler struct {
	accessService *service.AccessService
	logger        *zap.Logger
}

func NewAccessHandler(accessService *service.AccessService, logger *zap.Logger) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
		logger:        logger,
	}
}

func (h *AccessHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/access/request", h.RequestAccess)
	app.Get("/access/status/:documentId", h.GetStatus)

	// Administrator checks happen in the service layer.
	adminGroup := app.Group("/admin/access")
	adminGroup.Get("/", h.ListRequests)
	adminGroup.Patch("/", h.UpdateStatus)
}

func (h *AccessHandler) RequestAccess(c fiber.Ctx) error {
	var body models.AccessRequestBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext()
	defer cancel()

	view, err := h.accessService.RequestAccess(ctx, middleware.IdentityFrom(c), &body)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *AccessHandler) GetStatus(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	view, err := h.accessService.Status(ctx, middleware.IdentityFrom(c), c.Params("documentId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *AccessHandler) UpdateStatus(c fiber.Ctx) error {
	var body models.UpdateAccessBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext()
	defer cancel()

	updated, err := h.accessService.UpdateStatus(ctx, middleware.IdentityFrom(c), &body)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"request": updated,
	})
}

func (h *AccessHandler) ListRequests(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	requests, err := h.accessService.ListRequests(ctx, middleware.IdentityFrom(c), models.AccessStatus(c.Query("status")))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}
