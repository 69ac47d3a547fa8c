package sandbox

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// SearchFilter filtros de /api/sweets/search. Nil o vacío = sin filtro.
type SearchFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// matches name y category por subcadena sin distinguir mayúsculas; precios inclusivos.
func (f SearchFilter) matches(s entity.Sweet) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(s.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.MinPrice != nil && s.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && s.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// SweetUseCase catálogo, compras y reposición del sandbox.
type SweetUseCase struct {
	sweets   SweetStore
	ledger   PurchaseLedger
	accounts AccountStore
	now      func() time.Time
}

// NewSweetUseCase construye el caso de uso del catálogo.
func NewSweetUseCase(sweets SweetStore, ledger PurchaseLedger, accounts AccountStore, now func() time.Time) *SweetUseCase {
	if now == nil {
		now = time.Now
	}
	return &SweetUseCase{sweets: sweets, ledger: ledger, accounts: accounts, now: now}
}

// List todo el catálogo.
func (uc *SweetUseCase) List(ctx context.Context) ([]dto.SweetResponse, error) {
	return uc.Search(ctx, SearchFilter{})
}

// Search catálogo filtrado (AND de los filtros informados).
func (uc *SweetUseCase) Search(ctx context.Context, f SearchFilter) ([]dto.SweetResponse, error) {
	all, err := uc.sweets.ListSweets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SweetResponse, 0, len(all))
	for _, s := range all {
		if f.matches(s) {
			out = append(out, dto.NewSweetResponse(s))
		}
	}
	return out, nil
}

// Create alta de un dulce; el admin que lo crea queda como dueño.
func (uc *SweetUseCase) Create(ctx context.Context, ownerID int64, in dto.SweetRequest) (*dto.SweetResponse, error) {
	now := uc.now()
	owner := ownerID
	s, err := uc.sweets.CreateSweet(ctx, entity.Sweet{
		Name:            in.Name,
		Category:        in.Category,
		Price:           in.Price,
		Quantity:        in.Quantity,
		CreatedByUserID: &owner,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewSweetResponse(s)
	return &out, nil
}

// Update edita un dulce. Solo el dueño; los dulces sin dueño los edita cualquier admin.
func (uc *SweetUseCase) Update(ctx context.Context, userID, id int64, in dto.SweetRequest) (*dto.SweetResponse, error) {
	s, err := uc.sweets.UpdateSweet(ctx, id, func(s *entity.Sweet) error {
		if s.CreatedByUserID != nil && *s.CreatedByUserID != userID {
			return fail(domain.ErrForbidden, msgEditNotOwner)
		}
		s.Name = in.Name
		s.Category = in.Category
		s.Price = in.Price
		s.Quantity = in.Quantity
		s.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return nil, uc.notFound(err)
	}
	out := dto.NewSweetResponse(s)
	return &out, nil
}

// Delete baja de un dulce con la misma regla de propiedad que Update.
func (uc *SweetUseCase) Delete(ctx context.Context, userID, id int64) error {
	s, err := uc.sweets.SweetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return fail(domain.ErrNotFound, msgSweetNotFound)
	}
	if s.CreatedByUserID != nil && *s.CreatedByUserID != userID {
		return fail(domain.ErrForbidden, msgDeleteNotOwner)
	}
	return uc.notFound(uc.sweets.DeleteSweet(ctx, id))
}

// Purchase descuenta stock y anota la compra. El stock nunca queda negativo.
func (uc *SweetUseCase) Purchase(ctx context.Context, userID, id int64, quantity int) (*dto.SweetResponse, error) {
	if quantity < 1 {
		return nil, fail(domain.ErrInvalidInput, msgQuantityAtLeast)
	}
	s, _, err := uc.ledger.RecordPurchase(ctx, id, func(s *entity.Sweet) (LedgerEntry, error) {
		if s.Quantity == 0 {
			return LedgerEntry{}, fail(domain.ErrInsufficientStock, msgOutOfStock)
		}
		if s.Quantity < quantity {
			return LedgerEntry{}, fail(domain.ErrInsufficientStock, msgInsufficient)
		}
		now := uc.now()
		s.Quantity -= quantity
		s.UpdatedAt = now
		return LedgerEntry{
			Purchase: entity.Purchase{
				SweetName:   s.Name,
				Category:    s.Category,
				Price:       s.Price,
				Quantity:    quantity,
				TotalPrice:  s.Price.Mul(decimal.NewFromInt(int64(quantity))),
				PurchasedAt: now,
			},
			UserID: userID,
		}, nil
	})
	if err != nil {
		return nil, uc.notFound(err)
	}
	out := dto.NewSweetResponse(s)
	return &out, nil
}

// Restock suma unidades (solo admins, lo comprueba el router).
func (uc *SweetUseCase) Restock(ctx context.Context, id int64, quantity int) (*dto.SweetResponse, error) {
	if quantity < 1 {
		return nil, fail(domain.ErrInvalidInput, msgQuantityAtLeast)
	}
	s, err := uc.sweets.UpdateSweet(ctx, id, func(s *entity.Sweet) error {
		s.Quantity += quantity
		s.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return nil, uc.notFound(err)
	}
	out := dto.NewSweetResponse(s)
	return &out, nil
}

// History compras del usuario, las más recientes primero.
func (uc *SweetUseCase) History(ctx context.Context, userID int64) ([]dto.PurchaseResponse, error) {
	entries, err := uc.ledger.Purchases(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseResponse, 0)
	for _, e := range entries {
		if e.UserID == userID {
			out = append(out, dto.NewPurchaseResponse(e.Purchase))
		}
	}
	return out, nil
}

// AdminHistory compras de usuarios regulares sobre los dulces de los que el admin es dueño.
func (uc *SweetUseCase) AdminHistory(ctx context.Context, adminID int64) ([]dto.AdminPurchaseResponse, error) {
	sweets, err := uc.sweets.ListSweets(ctx)
	if err != nil {
		return nil, err
	}
	owned := make(map[int64]bool)
	for _, s := range sweets {
		if s.OwnedBy(adminID) {
			owned[s.ID] = true
		}
	}
	entries, err := uc.ledger.Purchases(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdminPurchaseResponse, 0)
	for _, e := range entries {
		if !owned[e.SweetID] {
			continue
		}
		buyer, err := uc.accounts.AccountByID(ctx, e.UserID)
		if err != nil {
			return nil, err
		}
		if buyer == nil || buyer.Role != entity.RoleUser {
			continue
		}
		out = append(out, dto.NewAdminPurchaseResponse(entity.AdminPurchase{Purchase: e.Purchase, UserID: e.UserID, Username: buyer.Username}))
	}
	return out, nil
}

// notFound añade el detalle de la API a domain.ErrNotFound del almacén.
func (uc *SweetUseCase) notFound(err error) error {
	if err == domain.ErrNotFound {
		return fail(domain.ErrNotFound, msgSweetNotFound)
	}
	return err
}
