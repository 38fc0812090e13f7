package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/middleware"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

type ModerationHandler struct {
	edits *services.EditService
	log   *zap.Logger
}

func NewModerationHandler(edits *services.EditService, log *zap.Logger) *ModerationHandler {
	return &ModerationHandler{edits: edits, log: log}
}

func (h *ModerationHandler) ListPending(c *fiber.Ctx) error {
	var filter *models.EntityType
	if v := c.Query("entity_type"); v != "" {
		et, err := models.ParseEntityType(v)
		if err != nil {
			return badRequest(c, "invalid entity_type")
		}
		filter = &et
	}

	edits, err := h.edits.ListPendingEdits(c.Context(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: edits})
}

func (h *ModerationHandler) GetEdit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid edit id")
	}
	edit, err := h.edits.GetEdit(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: edit})
}

func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, models.EditStatusApproved)
}

func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, models.EditStatusRejected)
}

func (h *ModerationHandler) review(c *fiber.Ctx, decision string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid edit id")
	}
	edit, err := h.edits.ReviewEdit(c.Context(), middleware.GetActor(c), id, decision)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: edit})
}

func (h *ModerationHandler) History(c *fiber.Ctx) error {
	et, err := models.ParseEntityType(c.Params("entityType"))
	if err != nil {
		return badRequest(c, "invalid entity type")
	}
	q := dto.ParseHistoryQuery(c)

	edits, err := h.edits.EditHistory(c.Context(), et, c.Params("id"), q.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: edits})
}
