package api

import (
	"context"
	"net/http"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// PurchaseHistoryRepository implementa repository.PurchaseHistoryRepository.
type PurchaseHistoryRepository struct {
	client *Client
}

// NewPurchaseHistoryRepository construye el repositorio del libro de compras.
func NewPurchaseHistoryRepository(client *Client) *PurchaseHistoryRepository {
	return &PurchaseHistoryRepository{client: client}
}

// ListMine GET /api/sweets/purchase-history: compras del usuario autenticado.
func (r *PurchaseHistoryRepository) ListMine(ctx context.Context, creds entity.Credentials) ([]entity.Purchase, error) {
	var out []dto.PurchaseResponse
	if err := r.client.do(ctx, creds, http.MethodGet, sweetsPath+"purchase-history", nil, nil, &out); err != nil {
		return nil, err
	}
	purchases := make([]entity.Purchase, 0, len(out))
	for _, p := range out {
		purchases = append(purchases, p.ToEntity())
	}
	return purchases, nil
}

// ListForAdmin GET /api/sweets/admin/purchase-history: compras sobre los dulces del admin.
func (r *PurchaseHistoryRepository) ListForAdmin(ctx context.Context, creds entity.Credentials) ([]entity.AdminPurchase, error) {
	var out []dto.AdminPurchaseResponse
	if err := r.client.do(ctx, creds, http.MethodGet, sweetsPath+"admin/purchase-history", nil, nil, &out); err != nil {
		return nil, err
	}
	purchases := make([]entity.AdminPurchase, 0, len(out))
	for _, p := range out {
		purchases = append(purchases, p.ToEntity())
	}
	return purchases, nil
}
