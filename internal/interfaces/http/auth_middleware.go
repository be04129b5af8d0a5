package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/pkg/jwt"
)

// Locals keys para la identidad del responsable en Fiber.
const (
	LocalPartyID   = "party_id"
	LocalPartyName = "party_name"
	LocalRole      = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja la identidad del responsable en c.Locals.
// Si issuer no está vacío, el token debe haber sido emitido por él.
func AuthMiddleware(jwtSecret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalPartyID, id.PartyID)
		c.Locals(LocalPartyName, id.Name)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// GetPartyID devuelve el DNI del responsable (después del middleware de auth).
func GetPartyID(c *fiber.Ctx) string { return localString(c, LocalPartyID) }

// GetPartyName devuelve el nombre del responsable.
func GetPartyName(c *fiber.Ctx) string { return localString(c, LocalPartyName) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
