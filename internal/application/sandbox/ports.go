// Package sandbox reglas de negocio de la API en memoria que usa el cliente en desarrollo y en tests.
package sandbox

import (
	"context"
	"time"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// Account usuario del sandbox con su hash bcrypt.
type Account struct {
	entity.Identity
	PasswordHash string
}

// LedgerEntry compra persistida con las referencias que el cliente no ve.
type LedgerEntry struct {
	entity.Purchase
	SweetID int64
	UserID  int64
}

// AccountStore puerto de persistencia de usuarios.
// Los métodos de búsqueda devuelven (nil, nil) cuando no hay coincidencia.
type AccountStore interface {
	CreateAccount(ctx context.Context, acc Account) (Account, error)
	AccountByID(ctx context.Context, id int64) (*Account, error)
	AccountByUsername(ctx context.Context, username string) (*Account, error)
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// ResetTokenStore tokens de un solo uso para restablecer la contraseña.
type ResetTokenStore interface {
	SaveResetToken(ctx context.Context, token string, userID int64, expires time.Time) error
	// ConsumeResetToken devuelve el usuario y borra el token; domain.ErrNotFound si no existe o venció.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error)
}

// SweetStore puerto de persistencia del catálogo.
type SweetStore interface {
	ListSweets(ctx context.Context) ([]entity.Sweet, error)
	SweetByID(ctx context.Context, id int64) (*entity.Sweet, error)
	CreateSweet(ctx context.Context, s entity.Sweet) (entity.Sweet, error)
	// UpdateSweet aplica fn bajo el bloqueo del almacén; si fn falla no se guarda nada.
	UpdateSweet(ctx context.Context, id int64, fn func(s *entity.Sweet) error) (entity.Sweet, error)
	DeleteSweet(ctx context.Context, id int64) error
}

// PurchaseLedger libro de compras (solo inserción).
type PurchaseLedger interface {
	AppendPurchase(ctx context.Context, e LedgerEntry) (LedgerEntry, error)
	// RecordPurchase aplica fn al dulce bloqueado y guarda la compra que devuelve, todo o nada.
	// Si fn falla no cambia el stock ni se anota nada.
	RecordPurchase(ctx context.Context, sweetID int64, fn func(s *entity.Sweet) (LedgerEntry, error)) (entity.Sweet, LedgerEntry, error)
	// Purchases todas las compras, las más recientes primero.
	Purchases(ctx context.Context) ([]LedgerEntry, error)
}

// Store almacén completo del sandbox (memoria o PostgreSQL).
type Store interface {
	AccountStore
	ResetTokenStore
	SweetStore
	PurchaseLedger
}
