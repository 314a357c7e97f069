package handlers

import (
	"context"
	"errors"
	"time"

	"dataroom-service/internal/access"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{access.ErrUnauthenticated, fiber.StatusUnauthorized, "unauthenticated"},
	{access.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{access.ErrAccessDenied, fiber.StatusForbidden, "access_denied"},
	{access.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{access.ErrInvalidOrExpired, fiber.StatusGone, "invalid_or_expired"},
	{access.ErrConflict, fiber.StatusConflict, "conflict"},
	{access.ErrInvalidTransition, fiber.StatusConflict, "invalid_transition"},
	{access.ErrInvalidStatus, fiber.StatusBadRequest, "invalid_status"},
	{access.ErrValidation, fiber.StatusBadRequest, "validation_error"},
}

// respondError maps a service error onto the HTTP error body. Unrecognised
// errors are logged and reported without detail.
func respondError(c fiber.Ctx, logger *zap.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(fiber.Map{
				"error": err.Error(),
				"code":  m.code,
			})
		}
	}

	logger.Error("Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"code":  "internal",
	})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"code":  "validation_error",
	})
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
