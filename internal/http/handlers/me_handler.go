package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/middleware"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

type MeHandler struct {
	edits *services.EditService
	log   *zap.Logger
}

func NewMeHandler(edits *services.EditService, log *zap.Logger) *MeHandler {
	return &MeHandler{edits: edits, log: log}
}

func (h *MeHandler) GetMe(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: middleware.GetActor(c)})
}

func (h *MeHandler) GetTrust(c *fiber.Ctx) error {
	st, err := h.edits.TrustStatus(c.Context(), middleware.GetActor(c).ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: st})
}

func (h *MeHandler) GetEdits(c *fiber.Ctx) error {
	q := dto.ParseHistoryQuery(c)
	edits, err := h.edits.ActorHistory(c.Context(), middleware.GetActor(c).ID, q.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: edits})
}
