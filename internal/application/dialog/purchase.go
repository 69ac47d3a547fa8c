package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/pkg/money"
)

// Purchaser ejecuta la compra con la credencial ya resuelta.
type Purchaser interface {
	Purchase(ctx context.Context, sweetID int64, quantity int) (*entity.Sweet, error)
}

// PurchaseFunc adapta una función a Purchaser.
type PurchaseFunc func(ctx context.Context, sweetID int64, quantity int) (*entity.Sweet, error)

// Purchase implementa Purchaser.
func (f PurchaseFunc) Purchase(ctx context.Context, sweetID int64, quantity int) (*entity.Sweet, error) {
	return f(ctx, sweetID, quantity)
}

// MsgQuantityTooLow cantidad por debajo de 1.
const MsgQuantityTooLow = "Quantity must be at least 1"

// PurchaseDialog confirmación de compra sobre el stock mostrado.
type PurchaseDialog struct {
	submitGuard

	sweet    entity.Sweet
	quantity int
}

// NewPurchaseDialog abre el diálogo con cantidad 1.
func NewPurchaseDialog(sweet entity.Sweet) *PurchaseDialog {
	return &PurchaseDialog{sweet: sweet, quantity: 1}
}

// Sweet dulce que se compra.
func (d *PurchaseDialog) Sweet() entity.Sweet { return d.sweet }

// Quantity cantidad actual.
func (d *PurchaseDialog) Quantity() int { return d.quantity }

// Max stock disponible según el listado.
func (d *PurchaseDialog) Max() int { return d.sweet.Quantity }

// Step suma delta y ajusta al rango [1, stock].
func (d *PurchaseDialog) Step(delta int) {
	q := d.quantity + delta
	if q > d.sweet.Quantity {
		q = d.sweet.Quantity
	}
	if q < 1 {
		q = 1
	}
	d.quantity = q
}

// SetQuantity guarda el valor escrito sin ajustarlo; Validate decide.
func (d *PurchaseDialog) SetQuantity(n int) { d.quantity = n }

// SetQuantityText interpreta la cantidad escrita.
func (d *PurchaseDialog) SetQuantityText(raw string) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return domain.NewValidationError("quantity", "Quantity must be a whole number")
	}
	d.quantity = n
	return nil
}

// Validate exige 1 ≤ cantidad ≤ stock mostrado.
func (d *PurchaseDialog) Validate() error {
	if d.quantity < 1 {
		return domain.NewValidationError("quantity", MsgQuantityTooLow)
	}
	if d.quantity > d.sweet.Quantity {
		return domain.NewValidationError("quantity", fmt.Sprintf("Only %d items available in stock", d.sweet.Quantity))
	}
	return nil
}

// Total precio unitario × cantidad.
func (d *PurchaseDialog) Total() decimal.Decimal {
	return d.sweet.Price.Mul(decimal.NewFromInt(int64(d.quantity)))
}

// Summary "3 units × 1.50".
func (d *PurchaseDialog) Summary() string {
	unit := "units"
	if d.quantity == 1 {
		unit = "unit"
	}
	return fmt.Sprintf("%d %s × %s", d.quantity, unit, money.Plain(d.sweet.Price))
}

// Confirm valida y despacha. Un error de validación no envía nada.
func (d *PurchaseDialog) Confirm(ctx context.Context, p Purchaser) (*entity.Sweet, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := d.begin(); err != nil {
		return nil, err
	}
	defer d.end()
	return p.Purchase(ctx, d.sweet.ID, d.quantity)
}
