package sandbox

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// Credenciales de las cuentas precargadas.
const (
	SeedAdminUsername = "admin"
	SeedAdminPassword = "admin12345"
	SeedUserUsername  = "alice"
	SeedUserPassword  = "alice12345"
)

var seedSweets = []dto.SweetRequest{
	{Name: "Chocolate Truffle", Category: "Chocolate", Price: decimal.RequireFromString("2.50"), Quantity: 40},
	{Name: "Dark Chocolate Bar", Category: "Chocolate", Price: decimal.RequireFromString("3.75"), Quantity: 25},
	{Name: "Gummy Bears", Category: "Gummies", Price: decimal.RequireFromString("1.20"), Quantity: 100},
	{Name: "Sour Worms", Category: "Gummies", Price: decimal.RequireFromString("1.35"), Quantity: 0},
	{Name: "Salted Caramel", Category: "Caramel", Price: decimal.RequireFromString("2.10"), Quantity: 12},
	{Name: "Rasgulla", Category: "Indian", Price: decimal.RequireFromString("0.80"), Quantity: 60},
}

// Seed precarga un admin, un usuario regular y un catálogo de ejemplo propiedad del admin.
func Seed(ctx context.Context, auth *AuthUseCase, sweets *SweetUseCase) error {
	admin, err := auth.Register(ctx, dto.RegisterRequest{
		Username: SeedAdminUsername, Email: "admin@sweetshop.local", Password: SeedAdminPassword, Role: entity.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := auth.Register(ctx, dto.RegisterRequest{
		Username: SeedUserUsername, Email: "alice@sweetshop.local", Password: SeedUserPassword, Role: entity.RoleUser,
	}); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	for _, s := range seedSweets {
		if _, err := sweets.Create(ctx, admin.User.ID, s); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name, err)
		}
	}
	return nil
}
