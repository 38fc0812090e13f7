package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/icar-directory/backend/internal/auth"
	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/rbac"
	"go.uber.org/zap"
)

const CtxActor = "actor"

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "missing authorization header"})
		}

		actor, err := actorFromHeader(cfg, authHeader)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
		}

		c.Locals(CtxActor, actor)
		return c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a token is present and
// otherwise continues as a public visitor. Invalid tokens are still rejected.
func OptionalAuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		actor, err := actorFromHeader(cfg, authHeader)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
		}

		c.Locals(CtxActor, actor)
		return c.Next()
	}
}

// AdminMiddleware requires the moderate permission. Must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetActor(c).Role, rbac.PermModerate) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "admin access required"})
		}
		return c.Next()
	}
}

// GetActor returns the authenticated actor, or a public visitor.
func GetActor(c *fiber.Ctx) models.Actor {
	if actor, ok := c.Locals(CtxActor).(models.Actor); ok {
		return actor
	}
	return models.Actor{Role: rbac.RolePublic}
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errAuthFormat  authError = "invalid authorization format"
	errAuthInvalid authError = "invalid or expired token"
)

func actorFromHeader(cfg *config.Config, authHeader string) (models.Actor, error) {
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		return models.Actor{}, errAuthFormat
	}

	claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
	if err != nil {
		return models.Actor{}, errAuthInvalid
	}

	role := claims.Role
	if cfg.IsAdmin(claims.UserID) {
		role = rbac.RoleAdmin
	}
	return models.Actor{ID: claims.UserID, Role: role, OrganizationID: claims.OrganizationID}, nil
}
