package handlers

import (
	"dataroom-service/internal/middleware"
	"dataroom-service/internal/models"
	"dataroom-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type InviteHandler struct {
	inviteService *service.InviteService
	logger        *zap.Logger
}

func NewInviteHandler(inviteService *service.InviteService, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		logger:        logger,
	}
}

func (h *InviteHandler) RegisterRoutes(app *fiber.App) {
	inviteGroup := app.Group("/invite")
	inviteGroup.Post("/", h.CreateInvite)
	inviteGroup.Get("/:token", h.ResolveInvite)
	inviteGroup.Post("/:token/claim", h.ClaimInvite)
}

func (h *InviteHandler) CreateInvite(c fiber.Ctx) error {
	var body models.CreateInviteBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext()
	defer cancel()

	created, err := h.inviteService.CreateInvite(ctx, middleware.IdentityFrom(c), &body)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *InviteHandler) ResolveInvite(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	view, err := h.inviteService.ResolveInvite(ctx, c.Params("token"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *InviteHandler) ClaimInvite(c fiber.Ctx) error {
	var sig models.NDASignature
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&sig); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := h.inviteService.ClaimInvite(ctx, middleware.IdentityFrom(c), c.Params("token"), sig)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
