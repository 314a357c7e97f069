package handlers

import (
	"dataroom-service/internal/middleware"
	"dataroom-service/internal/models"
	"dataroom-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

func (h *DocumentHandler) RegisterRoutes(app *fiber.App) {
	documentGroup := app.Group("/documents")
	documentGroup.Get("/", h.ListDocuments)
	documentGroup.Get("/:slug", h.GetDocument)
	documentGroup.Get("/:slug/content", h.GetContent)

	adminGroup := app.Group("/admin/documents")
	adminGroup.Get("/", h.AdminListDocuments)
	adminGroup.Post("/", h.CreateDocument)
	adminGroup.Put("/:id", h.UpdateDocument)
	adminGroup.Delete("/:id", h.DeleteDocument)
}

func (h *DocumentHandler) ListDocuments(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	docs, err := h.documentService.List(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"documents": docs,
	})
}

func (h *DocumentHandler) GetDocument(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	doc, err := h.documentService.Get(ctx, middleware.IdentityFrom(c), c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"document": doc,
	})
}

func (h *DocumentHandler) GetContent(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	content, err := h.documentService.Content(ctx, middleware.IdentityFrom(c), c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(content)
}

// Admin endpoints

func (h *DocumentHandler) AdminListDocuments(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	docs, err := h.documentService.AdminList(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"documents": docs,
	})
}

func (h *DocumentHandler) CreateDocument(c fiber.Ctx) error {
	var req models.CreateDocumentRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := h.documentService.Create(ctx, middleware.IdentityFrom(c), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"document": doc,
	})
}

func (h *DocumentHandler) UpdateDocument(c fiber.Ctx) error {
	var req models.UpdateDocumentRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.ID = c.Params("id")

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := h.documentService.Update(ctx, middleware.IdentityFrom(c), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"document": doc,
	})
}

func (h *DocumentHandler) DeleteDocument(c fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	if err := h.documentService.Delete(ctx, middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
