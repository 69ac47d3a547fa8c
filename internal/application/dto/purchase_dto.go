package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// PurchaseResponse asiento del libro de compras del usuario.
type PurchaseResponse struct {
	ID          int64           `json:"id"`
	SweetName   string          `json:"sweet_name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PurchasedAt time.Time       `json:"purchased_at"`
}

// AdminPurchaseResponse asiento visto por el admin dueño del dulce.
type AdminPurchaseResponse struct {
	PurchaseResponse
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// NewPurchaseResponse mapea la entidad al cuerpo HTTP.
func NewPurchaseResponse(p entity.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:          p.ID,
		SweetName:   p.SweetName,
		Category:    p.Category,
		Price:       p.Price,
		Quantity:    p.Quantity,
		TotalPrice:  p.TotalPrice,
		PurchasedAt: p.PurchasedAt,
	}
}

// NewAdminPurchaseResponse mapea la compra con comprador al cuerpo HTTP.
func NewAdminPurchaseResponse(p entity.AdminPurchase) AdminPurchaseResponse {
	return AdminPurchaseResponse{PurchaseResponse: NewPurchaseResponse(p.Purchase), UserID: p.UserID, Username: p.Username}
}

func (r PurchaseResponse) ToEntity() entity.Purchase {
	return entity.Purchase{
		ID:          r.ID,
		SweetName:   r.SweetName,
		Category:    r.Category,
		Price:       r.Price,
		Quantity:    r.Quantity,
		TotalPrice:  r.TotalPrice,
		PurchasedAt: r.PurchasedAt,
	}
}

func (r AdminPurchaseResponse) ToEntity() entity.AdminPurchase {
	return entity.AdminPurchase{Purchase: r.PurchaseResponse.ToEntity(), UserID: r.UserID, Username: r.Username}
}
