package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// principalResolver contrato mínimo para cargar el usuario del token.
// Lo implementa *sandbox.AuthUseCase; la interfaz evita acoplar el middleware al caso de uso.
type principalResolver interface {
	Principal(ctx context.Context, userID int64) (*entity.Identity, error)
}

// RequirePrincipal comprueba que el usuario del token sigue existiendo y toma su rol del almacén,
// no del token. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → el usuario ya no existe.
//   - 503 Service Unavailable → fallo del almacén.
func RequirePrincipal(resolver principalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return detail(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		user, err := resolver.Principal(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return detail(c, fiber.StatusUnauthorized, domain.Detail(err, "User not found"))
			}
			return detail(c, fiber.StatusServiceUnavailable, "Could not verify the user, try again later")
		}
		c.Locals(LocalRole, user.Role)
		return c.Next()
	}
}
