package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/infrastructure/postgres"
	"github.com/jhoicas/sweetshop/pkg/config"
)

// Requiere una base desechable: SWEETSHOP_TEST_DATABASE_URL=postgres://... go test ./...
func newStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("SWEETSHOP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SWEETSHOP_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	truncate(t, pool)
	return postgres.NewStore(pool)
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE purchases, sweets, reset_tokens, accounts RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func TestStore_CuentasUnicas(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	acc, err := store.CreateAccount(ctx, sandbox.Account{
		Identity:     entity.Identity{Username: "ana", Email: "ana@shop.io", Role: entity.RoleAdmin},
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.ID)

	// Caso 1: el email no distingue mayúsculas
	_, err = store.CreateAccount(ctx, sandbox.Account{
		Identity: entity.Identity{Username: "otra", Email: "ANA@shop.io"}, PasswordHash: "x",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := store.AccountByEmail(ctx, "Ana@Shop.io")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "ana", found.Username)

	missing, err := store.AccountByUsername(ctx, "nadie")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_UpdateSweet_NoDejaStockNegativo(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	owner, err := store.CreateAccount(ctx, sandbox.Account{
		Identity: entity.Identity{Username: "admin", Email: "admin@shop.io", Role: entity.RoleAdmin}, PasswordHash: "h",
	})
	require.NoError(t, err)
	sw, err := store.CreateSweet(ctx, entity.Sweet{
		Name: "Ladoo", Category: "Indian", Price: decimal.RequireFromString("1.50"), Quantity: 2, CreatedByUserID: &owner.ID,
	})
	require.NoError(t, err)

	_, err = store.UpdateSweet(ctx, sw.ID, func(s *entity.Sweet) error {
		s.Quantity -= 3
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := store.SweetByID(ctx, sw.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Quantity, "la transacción se revierte")
	assert.True(t, got.Price.Equal(decimal.RequireFromString("1.50")))
	assert.True(t, got.OwnedBy(owner.ID))
}

// Si el asiento de la compra falla, el descuento de stock se revierte con él.
func TestStore_RecordPurchase_UnaTransaccion(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	buyer, err := store.CreateAccount(ctx, sandbox.Account{
		Identity: entity.Identity{Username: "dora", Email: "dora@shop.io"}, PasswordHash: "h",
	})
	require.NoError(t, err)
	sw, err := store.CreateSweet(ctx, entity.Sweet{Name: "Barfi", Category: "Indian", Price: decimal.NewFromInt(3), Quantity: 5})
	require.NoError(t, err)

	buy := func(userID int64) (entity.Sweet, sandbox.LedgerEntry, error) {
		return store.RecordPurchase(ctx, sw.ID, func(s *entity.Sweet) (sandbox.LedgerEntry, error) {
			s.Quantity -= 2
			return sandbox.LedgerEntry{
				Purchase: entity.Purchase{
					SweetName: s.Name, Category: s.Category, Price: s.Price, Quantity: 2,
					TotalPrice: s.Price.Mul(decimal.NewFromInt(2)),
				},
				UserID: userID,
			}, nil
		})
	}

	// Caso 1: usuario inexistente, el INSERT viola la FK y el UPDATE se revierte
	_, _, err = buy(999)
	require.Error(t, err)

	got, err := store.SweetByID(ctx, sw.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Quantity)
	list, err := store.Purchases(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Caso 2: compra válida
	updated, entry, err := buy(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, sw.ID, entry.SweetID)
	assert.NotZero(t, entry.ID)

	list, err = store.Purchases(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, buyer.ID, list[0].UserID)
	assert.True(t, list[0].TotalPrice.Equal(decimal.NewFromInt(6)))
}

func TestStore_ResetTokenDeUnSoloUso(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	acc, err := store.CreateAccount(ctx, sandbox.Account{
		Identity: entity.Identity{Username: "beto", Email: "beto@shop.io"}, PasswordHash: "h",
	})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, store.SaveResetToken(ctx, "viejo", acc.ID, now.Add(time.Hour)))
	require.NoError(t, store.SaveResetToken(ctx, "nuevo", acc.ID, now.Add(time.Hour)))

	_, err = store.ConsumeResetToken(ctx, "viejo", now)
	assert.ErrorIs(t, err, domain.ErrNotFound, "solo queda el último token")

	id, err := store.ConsumeResetToken(ctx, "nuevo", now)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, id)

	_, err = store.ConsumeResetToken(ctx, "nuevo", now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PurchasesRecientesPrimero(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	buyer, err := store.CreateAccount(ctx, sandbox.Account{
		Identity: entity.Identity{Username: "cami", Email: "cami@shop.io"}, PasswordHash: "h",
	})
	require.NoError(t, err)
	sw, err := store.CreateSweet(ctx, entity.Sweet{Name: "Toffee", Category: "Caramel", Price: decimal.NewFromInt(1), Quantity: 9})
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 2; i++ {
		_, err := store.AppendPurchase(ctx, sandbox.LedgerEntry{
			Purchase: entity.Purchase{
				SweetName: sw.Name, Category: sw.Category, Price: sw.Price, Quantity: i,
				TotalPrice: sw.Price.Mul(decimal.NewFromInt(int64(i))), PurchasedAt: base.Add(time.Duration(i) * time.Minute),
			},
			SweetID: sw.ID, UserID: buyer.ID,
		})
		require.NoError(t, err)
	}

	// Caso 2: el dulce borrado no borra el historial
	require.NoError(t, store.DeleteSweet(ctx, sw.ID))

	list, err := store.Purchases(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Quantity)
	assert.Equal(t, int64(0), list[0].SweetID)
	assert.Equal(t, "Toffee", list[1].SweetName)
}
