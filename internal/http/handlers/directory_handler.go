package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/middleware"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

type DirectoryHandler struct {
	directory *services.DirectoryService
	log       *zap.Logger
}

func NewDirectoryHandler(directory *services.DirectoryService, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, log: log}
}

func (h *DirectoryHandler) ListStakeholders(c *fiber.Ctx) error {
	list, err := h.directory.ListStakeholders(c.Context(), middleware.GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: list})
}

func (h *DirectoryHandler) GetStakeholder(c *fiber.Ctx) error {
	st, err := h.directory.GetStakeholder(c.Context(), middleware.GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: st})
}

func (h *DirectoryHandler) ListProjects(c *fiber.Ctx) error {
	list, err := h.directory.ListProjects(c.Context(), middleware.GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: list})
}

func (h *DirectoryHandler) GetProject(c *fiber.Ctx) error {
	p, err := h.directory.GetProject(c.Context(), middleware.GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *DirectoryHandler) ListOpportunities(c *fiber.Ctx) error {
	list, err := h.directory.ListOpportunities(c.Context(), middleware.GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: list})
}

func (h *DirectoryHandler) DeleteProject(c *fiber.Ctx) error {
	if err := h.directory.DeleteProject(c.Context(), middleware.GetActor(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *DirectoryHandler) CreateProject(c *fiber.Ctx) error {
	var proposed models.Fields
	if err := c.BodyParser(&proposed); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := h.directory.CreateProject(c.Context(), middleware.GetActor(c), proposed)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: p})
}
