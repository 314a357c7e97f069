package handlers

import (
	"strconv"

	"dataroom-service/internal/middleware"
	"dataroom-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

func (h *NotificationHandler) RegisterRoutes(app *fiber.App) {
	notificationGroup := app.Group("/notifications")
	notificationGroup.Get("/", h.ListNotifications)
	notificationGroup.Get("/unread-count", h.UnreadCount)
	notificationGroup.Patch("/read-all", h.MarkAllRead)
	notificationGroup.Patch("/:id/read", h.MarkRead)
}

func (h *NotificationHandler) ListNotifications(c fiber.Ctx) error {
	limit := 0
	if l, err := strconv.Atoi(c.Query("limit", "20")); err == nil {
		limit = l
	}
	unreadOnly := c.Query("unread") == "true"

	ctx, cancel := requestContext()
	defer cancel()

	items, err := h.notificationService.List(ctx, middleware.IdentityFrom(c), unreadOnly, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"notifications": items,
	})
}

func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	count, err := h.notificationService.UnreadCount(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	if err := h.notificationService.MarkRead(ctx, middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	updated, err := h.notificationService.MarkAllRead(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"updated": updated,
	})
}
