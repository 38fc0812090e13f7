package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/middleware"
	"github.com/icar-directory/backend/internal/schema"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	reqID := middleware.GetRequestID(c)

	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "validation failed", RequestID: reqID, Fields: verr.Fields})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "forbidden", RequestID: reqID})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found", RequestID: reqID})
	case errors.Is(err, services.ErrAlreadyResolved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "already resolved", RequestID: reqID})
	case errors.Is(err, services.ErrAlreadyClaimed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "organization already claimed", RequestID: reqID})
	case errors.Is(err, services.ErrEntityGone):
		return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{Error: "edited entity no longer exists, reject the edit instead", RequestID: reqID})
	}

	log.Error("request failed", zap.String("request_id", reqID), zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error", RequestID: reqID})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)})
}
