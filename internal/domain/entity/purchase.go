package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase asiento inmutable del libro de compras. Nombre, categoría y precio son
// una foto del dulce en el momento de la compra.
type Purchase struct {
	ID          int64
	SweetName   string
	Category    string
	Price       decimal.Decimal
	Quantity    int
	TotalPrice  decimal.Decimal // Price × Quantity
	PurchasedAt time.Time
}

// AdminPurchase compra vista por el admin dueño del dulce: incluye quién compró.
type AdminPurchase struct {
	Purchase
	UserID   int64
	Username string
}
