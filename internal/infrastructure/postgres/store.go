package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

var _ sandbox.Store = (*Store)(nil)

// Store implementación de los puertos del sandbox sobre PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewStore construye el almacén sobre un pool ya abierto.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, tx: NewTxRunner(pool)}
}

// ────────────────────────────────────────────────────────────────
// Usuarios
// ────────────────────────────────────────────────────────────────

const accountColumns = `id, username, email, password_hash, role, created_at`

func scanAccount(row pgx.Row) (*sandbox.Account, error) {
	var a sandbox.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc sandbox.Account) (sandbox.Account, error) {
	acc.CreatedAt = orNow(acc.CreatedAt)
	query := `
		INSERT INTO accounts (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := s.pool.QueryRow(ctx, query, acc.Username, acc.Email, acc.PasswordHash, acc.Role, acc.CreatedAt).Scan(&acc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sandbox.Account{}, domain.ErrConflict
		}
		return sandbox.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return acc, nil
}

func (s *Store) AccountByID(ctx context.Context, id int64) (*sandbox.Account, error) {
	acc, err := scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return acc, nil
}

func (s *Store) AccountByUsername(ctx context.Context, username string) (*sandbox.Account, error) {
	acc, err := scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return acc, nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (*sandbox.Account, error) {
	acc, err := scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return acc, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ────────────────────────────────────────────────────────────────
// Tokens de reseteo
// ────────────────────────────────────────────────────────────────

// SaveResetToken deja un solo token vigente por usuario.
func (s *Store) SaveResetToken(ctx context.Context, token string, userID int64, expires time.Time) error {
	return s.tx.Run(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM reset_tokens WHERE account_id = $1`, userID); err != nil {
			return fmt.Errorf("delete reset tokens: %w", err)
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO reset_tokens (token, account_id, expires_at) VALUES ($1, $2, $3)`,
			token, userID, expires,
		); err != nil {
			return fmt.Errorf("insert reset token: %w", err)
		}
		return nil
	})
}

func (s *Store) ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error) {
	var (
		userID  int64
		expires time.Time
	)
	err := s.pool.QueryRow(ctx,
		`DELETE FROM reset_tokens WHERE token = $1 RETURNING account_id, expires_at`, token,
	).Scan(&userID, &expires)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("consume reset token: %w", err)
	}
	if !now.Before(expires) {
		return 0, domain.ErrNotFound
	}
	return userID, nil
}

// ────────────────────────────────────────────────────────────────
// Dulces
// ────────────────────────────────────────────────────────────────

const sweetColumns = `id, name, category, price, quantity, created_by_user_id, created_at, updated_at`

func scanSweet(row pgx.Row) (entity.Sweet, error) {
	var sw entity.Sweet
	err := row.Scan(&sw.ID, &sw.Name, &sw.Category, &sw.Price, &sw.Quantity, &sw.CreatedByUserID, &sw.CreatedAt, &sw.UpdatedAt)
	return sw, err
}

// ListSweets ordenados por id.
func (s *Store) ListSweets(ctx context.Context) ([]entity.Sweet, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sweetColumns+` FROM sweets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Sweet, 0)
	for rows.Next() {
		sw, err := scanSweet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sweet: %w", err)
		}
		out = append(out, sw)
	}
	return out, rows.Err()
}

func (s *Store) SweetByID(ctx context.Context, id int64) (*entity.Sweet, error) {
	sw, err := scanSweet(s.pool.QueryRow(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sweet: %w", err)
	}
	return &sw, nil
}

func (s *Store) CreateSweet(ctx context.Context, sw entity.Sweet) (entity.Sweet, error) {
	sw.CreatedAt = orNow(sw.CreatedAt)
	sw.UpdatedAt = orNow(sw.UpdatedAt)
	query := `
		INSERT INTO sweets (name, category, price, quantity, created_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := s.pool.QueryRow(ctx, query,
		sw.Name, sw.Category, sw.Price, sw.Quantity, sw.CreatedByUserID, sw.CreatedAt, sw.UpdatedAt,
	).Scan(&sw.ID)
	if err != nil {
		return entity.Sweet{}, fmt.Errorf("insert sweet: %w", err)
	}
	return sw, nil
}

// UpdateSweet bloquea la fila (SELECT FOR UPDATE) mientras fn la modifica.
func (s *Store) UpdateSweet(ctx context.Context, id int64, fn func(*entity.Sweet) error) (entity.Sweet, error) {
	var updated entity.Sweet
	err := s.tx.Run(ctx, func(q Querier) error {
		sw, err := lockAndUpdate(ctx, q, id, fn)
		updated = sw
		return err
	})
	if err != nil {
		return entity.Sweet{}, err
	}
	return updated, nil
}

func lockAndUpdate(ctx context.Context, q Querier, id int64, fn func(*entity.Sweet) error) (entity.Sweet, error) {
	sw, err := scanSweet(q.QueryRow(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Sweet{}, domain.ErrNotFound
		}
		return entity.Sweet{}, fmt.Errorf("lock sweet: %w", err)
	}
	if err := fn(&sw); err != nil {
		return entity.Sweet{}, err
	}
	if sw.Quantity < 0 {
		return entity.Sweet{}, domain.ErrInsufficientStock
	}
	sw.ID = id
	query := `
		UPDATE sweets
		SET name = $2, category = $3, price = $4, quantity = $5, created_by_user_id = $6, updated_at = $7
		WHERE id = $1`
	if _, err := q.Exec(ctx, query,
		sw.ID, sw.Name, sw.Category, sw.Price, sw.Quantity, sw.CreatedByUserID, orNow(sw.UpdatedAt),
	); err != nil {
		if isCheckViolation(err) {
			return entity.Sweet{}, domain.ErrInsufficientStock
		}
		return entity.Sweet{}, fmt.Errorf("update sweet: %w", err)
	}
	return sw, nil
}

func (s *Store) DeleteSweet(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sweets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ────────────────────────────────────────────────────────────────
// Libro de compras
// ────────────────────────────────────────────────────────────────

func (s *Store) AppendPurchase(ctx context.Context, e sandbox.LedgerEntry) (sandbox.LedgerEntry, error) {
	return insertPurchase(ctx, s.pool, e)
}

// RecordPurchase descuenta el stock y anota la compra en la misma transacción.
func (s *Store) RecordPurchase(ctx context.Context, id int64, fn func(*entity.Sweet) (sandbox.LedgerEntry, error)) (entity.Sweet, sandbox.LedgerEntry, error) {
	var (
		updated entity.Sweet
		entry   sandbox.LedgerEntry
	)
	err := s.tx.Run(ctx, func(q Querier) error {
		sw, err := lockAndUpdate(ctx, q, id, func(sw *entity.Sweet) error {
			var ferr error
			entry, ferr = fn(sw)
			return ferr
		})
		if err != nil {
			return err
		}
		entry.SweetID = id
		entry, err = insertPurchase(ctx, q, entry)
		if err != nil {
			return err
		}
		updated = sw
		return nil
	})
	if err != nil {
		return entity.Sweet{}, sandbox.LedgerEntry{}, err
	}
	return updated, entry, nil
}

func insertPurchase(ctx context.Context, q Querier, e sandbox.LedgerEntry) (sandbox.LedgerEntry, error) {
	e.PurchasedAt = orNow(e.PurchasedAt)
	query := `
		INSERT INTO purchases (sweet_id, user_id, sweet_name, category, price, quantity, total_price, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := q.QueryRow(ctx, query,
		e.SweetID, e.UserID, e.SweetName, e.Category, e.Price, e.Quantity, e.TotalPrice, e.PurchasedAt,
	).Scan(&e.ID)
	if err != nil {
		return sandbox.LedgerEntry{}, fmt.Errorf("insert purchase: %w", err)
	}
	return e, nil
}

// Purchases más recientes primero; a igual instante, el id mayor primero.
func (s *Store) Purchases(ctx context.Context) ([]sandbox.LedgerEntry, error) {
	query := `
		SELECT id, sweet_id, user_id, sweet_name, category, price, quantity, total_price, purchased_at
		FROM purchases
		ORDER BY purchased_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	out := make([]sandbox.LedgerEntry, 0)
	for rows.Next() {
		var (
			e       sandbox.LedgerEntry
			sweetID *int64
		)
		if err := rows.Scan(&e.ID, &sweetID, &e.UserID, &e.SweetName, &e.Category, &e.Price,
			&e.Quantity, &e.TotalPrice, &e.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		if sweetID != nil {
			e.SweetID = *sweetID
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
