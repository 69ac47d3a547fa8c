// Package history vista del libro de compras: la del usuario (lo que compró) y la del
// admin (lo que otros compraron de sus dulces).
package history

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// Row fila de la tabla. Purchaser solo se informa en la vista del admin.
type Row struct {
	ID          int64
	Purchaser   string
	PurchasedAt time.Time
	SweetName   string
	Category    string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// View tabla del historial en el orden recibido del servidor (más reciente primero).
type View struct {
	Admin bool
	Rows  []Row
}

// FromPurchases vista personal.
func FromPurchases(purchases []entity.Purchase) View {
	rows := make([]Row, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, rowOf(p, ""))
	}
	return View{Rows: rows}
}

// FromAdminPurchases vista del admin, con el comprador en cada fila.
func FromAdminPurchases(purchases []entity.AdminPurchase) View {
	rows := make([]Row, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, rowOf(p.Purchase, p.Username))
	}
	return View{Admin: true, Rows: rows}
}

func rowOf(p entity.Purchase, purchaser string) Row {
	return Row{
		ID:          p.ID,
		Purchaser:   purchaser,
		PurchasedAt: p.PurchasedAt,
		SweetName:   p.SweetName,
		Category:    p.Category,
		Quantity:    p.Quantity,
		UnitPrice:   p.Price,
		Total:       p.TotalPrice,
	}
}

// Total suma de los totales de cada compra.
func (v View) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range v.Rows {
		sum = sum.Add(r.Total)
	}
	return sum
}

// Empty indica si no hay compras.
func (v View) Empty() bool { return len(v.Rows) == 0 }

// Title encabezado de la sección.
func (v View) Title() string {
	if v.Admin {
		return "My Sweets Purchase History"
	}
	return "Your Purchase History"
}

// TotalLabel "Total Revenue" para el admin, "Total Spent" para el usuario.
func (v View) TotalLabel() string {
	if v.Admin {
		return "Total Revenue"
	}
	return "Total Spent"
}

// EmptyMessage texto cuando no hay compras.
func (v View) EmptyMessage() string {
	if v.Admin {
		return "No purchases found for your sweets yet. Users will see their purchases here once they start shopping your sweets."
	}
	return "No purchases yet. Start shopping to see your history here!"
}

// ToggleLabel texto del botón que muestra u oculta el historial.
func ToggleLabel(admin, shown bool) string {
	switch {
	case admin && shown:
		return "Hide All Purchases"
	case admin:
		return "View All Purchases"
	case shown:
		return "Hide Purchase History"
	default:
		return "View Purchase History"
	}
}
