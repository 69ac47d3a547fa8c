package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sweet representa un dulce del catálogo (el InventoryItem de la tienda).
// Quantity nunca es negativa; CreatedByUserID es el admin dueño (nil en dulces heredados).
type Sweet struct {
	ID              int64
	Name            string
	Category        string          // etiqueta libre usada para filtrar
	Price           decimal.Decimal // precio unitario, viaja como string decimal
	Quantity        int
	CreatedByUserID *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InStock indica si queda al menos una unidad.
func (s Sweet) InStock() bool { return s.Quantity > 0 }

// OwnedBy indica si el usuario es el dueño registrado del dulce.
func (s Sweet) OwnedBy(userID int64) bool {
	return s.CreatedByUserID != nil && *s.CreatedByUserID == userID
}

// StockLabel texto de disponibilidad para la tarjeta.
func (s Sweet) StockLabel() string {
	if !s.InStock() {
		return "Out of Stock"
	}
	return fmt.Sprintf("Stock: %d", s.Quantity)
}
