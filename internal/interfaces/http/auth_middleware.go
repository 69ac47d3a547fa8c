package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sweetshop/pkg/jwt"
)

// Locals keys para UserID y Role en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y Role a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return detail(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return detail(c, fiber.StatusUnauthorized, "Invalid authentication credentials")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return detail(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		userID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return detail(c, fiber.StatusUnauthorized, "Invalid authentication credentials")
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequireRole deja pasar solo si el rol del contexto está entre los permitidos.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return detail(c, fiber.StatusUnauthorized, "Invalid authentication credentials")
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return detail(c, fiber.StatusForbidden, "Admin access required. Current role: "+role)
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}
