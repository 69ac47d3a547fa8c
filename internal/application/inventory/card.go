// Package inventory modelo de la tarjeta de un dulce: qué acciones ve cada rol y
// la validación de las acciones rápidas (reponer, eliminar).
package inventory

import (
	"strconv"
	"strings"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// Permissions acciones visibles en la tarjeta.
type Permissions struct {
	Purchase        bool // el botón existe (solo usuarios regulares)
	PurchaseEnabled bool // y está habilitado (queda stock)
	Restock         bool
	Edit            bool
	Delete          bool
}

// Manage indica si la tarjeta muestra controles de gestión.
func (p Permissions) Manage() bool { return p.Restock || p.Edit || p.Delete }

// Card dulce listo para mostrar junto con sus permisos.
type Card struct {
	Sweet       entity.Sweet
	Permissions Permissions
}

// NewCard calcula los permisos del usuario sobre el dulce.
// Los admins no compran; gestionan solo los dulces que crearon.
func NewCard(identity entity.Identity, sweet entity.Sweet) Card {
	var p Permissions
	if identity.IsAdmin() {
		owner := sweet.OwnedBy(identity.ID)
		p.Restock, p.Edit, p.Delete = owner, owner, owner
	} else {
		p.Purchase = true
		p.PurchaseEnabled = sweet.InStock()
	}
	return Card{Sweet: sweet, Permissions: p}
}

// NewCards aplica NewCard a todo el listado conservando el orden.
func NewCards(identity entity.Identity, sweets []entity.Sweet) []Card {
	cards := make([]Card, len(sweets))
	for i, s := range sweets {
		cards[i] = NewCard(identity, s)
	}
	return cards
}

// StockLabel "Out of Stock" o "Stock: N".
func (c Card) StockLabel() string { return c.Sweet.StockLabel() }

// ParseRestockQuantity interpreta la cantidad escrita en la tarjeta.
// Solo se aceptan enteros positivos; cualquier otra cosa es un error explícito.
func ParseRestockQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, domain.NewValidationError("quantity", MsgInvalidRestock)
	}
	return n, nil
}

// Mensajes mostrados al usuario.
const (
	MsgInvalidRestock = "Restock quantity must be a positive whole number"
	MsgNotOwner       = "You can only manage sweets that you created"
	MsgAdminPurchase  = "Admins cannot purchase sweets"
	MsgOutOfStock     = "Sweet is out of stock"
	DeletePrompt      = "Are you sure you want to delete this sweet?"
)

// PermissionError acción no permitida detectada localmente, antes de llamar a la API.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// Is hace que errors.Is(err, domain.ErrForbidden) sea cierto.
func (e *PermissionError) Is(target error) bool { return target == domain.ErrForbidden }

func forbidden(msg string) error { return &PermissionError{Message: msg} }

// Confirmer pide confirmación explícita al usuario.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapta una función a Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implementa Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }
