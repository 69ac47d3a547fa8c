package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// UseCase acciones rápidas de la tarjeta. Verifica permisos localmente antes de
// despachar; el servidor sigue siendo la autoridad final.
type UseCase struct {
	sweets repository.SweetRepository
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(sweets repository.SweetRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{sweets: sweets, log: log.Component("inventory")}
}

// Restock repone raw unidades del dulce de la tarjeta.
func (uc *UseCase) Restock(ctx context.Context, creds entity.Credentials, card Card, raw string) (*entity.Sweet, error) {
	if !card.Permissions.Restock {
		return nil, forbidden(MsgNotOwner)
	}
	qty, err := ParseRestockQuantity(raw)
	if err != nil {
		return nil, err
	}
	updated, err := uc.sweets.Restock(ctx, creds, card.Sweet.ID, qty)
	if err != nil {
		return nil, fmt.Errorf("reponer dulce %d: %w", card.Sweet.ID, err)
	}
	uc.log.Info().Int64("sweet_id", updated.ID).Int("quantity", qty).Int("stock", updated.Quantity).Msg("dulce repuesto")
	return updated, nil
}

// Delete elimina el dulce tras confirmación. Devuelve false sin error si el usuario
// no confirmó; en ese caso no se envía nada.
func (uc *UseCase) Delete(ctx context.Context, creds entity.Credentials, card Card, confirm Confirmer) (bool, error) {
	if !card.Permissions.Delete {
		return false, forbidden(MsgNotOwner)
	}
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return false, nil
	}
	if err := uc.sweets.Delete(ctx, creds, card.Sweet.ID); err != nil {
		return false, fmt.Errorf("eliminar dulce %d: %w", card.Sweet.ID, err)
	}
	uc.log.Info().Int64("sweet_id", card.Sweet.ID).Msg("dulce eliminado")
	return true, nil
}

// CheckPurchase valida que la tarjeta permita comprar ahora mismo.
func CheckPurchase(card Card) error {
	if !card.Permissions.Purchase {
		return forbidden(MsgAdminPurchase)
	}
	if !card.Permissions.PurchaseEnabled {
		return forbidden(MsgOutOfStock)
	}
	return nil
}

// CheckEdit valida que la tarjeta permita editar.
func CheckEdit(card Card) error {
	if !card.Permissions.Edit {
		return forbidden(MsgNotOwner)
	}
	return nil
}
