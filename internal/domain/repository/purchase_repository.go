package repository

import (
	"context"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// PurchaseHistoryRepository define el puerto de lectura del libro de compras.
type PurchaseHistoryRepository interface {
	// ListMine compras del usuario autenticado.
	ListMine(ctx context.Context, creds entity.Credentials) ([]entity.Purchase, error)
	// ListForAdmin compras de usuarios regulares sobre los dulces del admin autenticado.
	ListForAdmin(ctx context.Context, creds entity.Credentials) ([]entity.AdminPurchase, error)
}
