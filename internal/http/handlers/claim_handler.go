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

type ClaimHandler struct {
	claims *services.ClaimService
	log    *zap.Logger
}

func NewClaimHandler(claims *services.ClaimService, log *zap.Logger) *ClaimHandler {
	return &ClaimHandler{claims: claims, log: log}
}

func (h *ClaimHandler) Submit(c *fiber.Ctx) error {
	var req dto.ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	claim, err := h.claims.SubmitClaim(c.Context(), middleware.GetActor(c), models.NewClaim{
		OrganizationID: req.OrganizationID,
		ClaimantName:   req.ClaimantName,
		ClaimantEmail:  req.ClaimantEmail,
		Notes:          req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: claim})
}

func (h *ClaimHandler) Status(c *fiber.Ctx) error {
	st, err := h.claims.ClaimStatus(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: st})
}

func (h *ClaimHandler) List(c *fiber.Ctx) error {
	claims, err := h.claims.ListClaims(c.Context(), c.Query("status"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: claims})
}

func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid claim id")
	}
	claim, err := h.claims.GetClaim(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: claim})
}

func (h *ClaimHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, models.ClaimStatusApproved)
}

func (h *ClaimHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, models.ClaimStatusRejected)
}

func (h *ClaimHandler) review(c *fiber.Ctx, decision string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid claim id")
	}
	claim, err := h.claims.ReviewClaim(c.Context(), middleware.GetActor(c), id, decision)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: claim})
}
