package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/middleware"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

type EditHandler struct {
	edits *services.EditService
	log   *zap.Logger
}

func NewEditHandler(edits *services.EditService, log *zap.Logger) *EditHandler {
	return &EditHandler{edits: edits, log: log}
}

func (h *EditHandler) UpdateStakeholder(c *fiber.Ctx) error {
	return h.submit(c, models.EntityStakeholder)
}

func (h *EditHandler) UpdateProject(c *fiber.Ctx) error {
	return h.submit(c, models.EntityProject)
}

func (h *EditHandler) submit(c *fiber.Ctx, entityType models.EntityType) error {
	var proposed models.Fields
	if err := c.BodyParser(&proposed); err != nil {
		return badRequest(c, "invalid request")
	}

	res, err := h.edits.SubmitEdit(c.Context(), middleware.GetActor(c), entityType, c.Params("id"), proposed)
	if err != nil {
		return writeError(c, h.log, err)
	}

	if res.Outcome == services.OutcomeHeld {
		return c.Status(fiber.StatusAccepted).JSON(dto.SuccessResponse{OK: true, Data: dto.HeldResponse{
			Status:   models.EditStatusPending,
			EditID:   res.Edit.ID.String(),
			EditKind: res.EditKind,
			Note:     res.Note,
		}})
	}

	out := dto.PublishedResponse{
		Status:   services.OutcomePublished,
		Entity:   res.Entity,
		EditKind: res.EditKind,
		Degraded: res.Degraded,
	}
	if res.Edit != nil {
		out.EditID = res.Edit.ID.String()
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}
