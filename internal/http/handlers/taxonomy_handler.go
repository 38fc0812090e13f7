package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/middleware"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

type TaxonomyHandler struct {
	taxonomy *services.TaxonomyService
	log      *zap.Logger
}

func NewTaxonomyHandler(taxonomy *services.TaxonomyService, log *zap.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy, log: log}
}

// Get serves ?type=<vocabulary>, or every vocabulary when type is absent.
func (h *TaxonomyHandler) Get(c *fiber.Ctx) error {
	if typ := c.Query("type"); typ != "" {
		values, err := h.taxonomy.Get(c.Context(), typ)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(dto.SuccessResponse{OK: true, Data: dto.TaxonomyResponse{Type: typ, Values: values}})
	}
	all, err := h.taxonomy.All(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: all})
}

func (h *TaxonomyHandler) Set(c *fiber.Ctx) error {
	var req dto.TaxonomyRequest
	if err := c.BodyParser(&req); err != nil || req.Values == nil {
		return badRequest(c, "invalid request")
	}
	values, err := h.taxonomy.Set(c.Context(), middleware.GetActor(c), req.Type, req.Values)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.TaxonomyResponse{Type: req.Type, Values: values}})
}
