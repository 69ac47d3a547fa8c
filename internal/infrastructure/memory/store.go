// Package memory almacén en memoria del sandbox. Implementa los puertos de application/sandbox.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

type resetToken struct {
	userID  int64
	expires time.Time
}

// Store guarda usuarios, dulces, compras y tokens de reseteo tras un único mutex.
type Store struct {
	mu sync.RWMutex

	accounts    map[int64]sandbox.Account
	sweets      map[int64]entity.Sweet
	purchases   []sandbox.LedgerEntry
	resetTokens map[string]resetToken

	nextAccountID  int64
	nextSweetID    int64
	nextPurchaseID int64
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[int64]sandbox.Account),
		sweets:      make(map[int64]entity.Sweet),
		resetTokens: make(map[string]resetToken),
	}
}

var (
	_ sandbox.AccountStore    = (*Store)(nil)
	_ sandbox.ResetTokenStore = (*Store)(nil)
	_ sandbox.SweetStore      = (*Store)(nil)
	_ sandbox.PurchaseLedger  = (*Store)(nil)
)

// ────────────────────────────────────────────────────────────────
// Usuarios
// ────────────────────────────────────────────────────────────────

func (s *Store) CreateAccount(_ context.Context, acc sandbox.Account) (sandbox.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Username == acc.Username || strings.EqualFold(existing.Email, acc.Email) {
			return sandbox.Account{}, domain.ErrConflict
		}
	}
	s.nextAccountID++
	acc.ID = s.nextAccountID
	s.accounts[acc.ID] = acc
	return acc, nil
}

func (s *Store) AccountByID(_ context.Context, id int64) (*sandbox.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (s *Store) AccountByUsername(_ context.Context, username string) (*sandbox.Account, error) {
	return s.findAccount(func(a sandbox.Account) bool { return a.Username == username }), nil
}

func (s *Store) AccountByEmail(_ context.Context, email string) (*sandbox.Account, error) {
	return s.findAccount(func(a sandbox.Account) bool { return strings.EqualFold(a.Email, email) }), nil
}

func (s *Store) findAccount(match func(sandbox.Account) bool) *sandbox.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if match(acc) {
			found := acc
			return &found
		}
	}
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	acc.PasswordHash = hash
	s.accounts[id] = acc
	return nil
}

// ────────────────────────────────────────────────────────────────
// Tokens de reseteo
// ────────────────────────────────────────────────────────────────

func (s *Store) SaveResetToken(_ context.Context, token string, userID int64, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Un token vigente por usuario.
	for t, rt := range s.resetTokens {
		if rt.userID == userID {
			delete(s.resetTokens, t)
		}
	}
	s.resetTokens[token] = resetToken{userID: userID, expires: expires}
	return nil
}

func (s *Store) ConsumeResetToken(_ context.Context, token string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.resetTokens[token]
	if !ok {
		return 0, domain.ErrNotFound
	}
	delete(s.resetTokens, token)
	if !now.Before(rt.expires) {
		return 0, domain.ErrNotFound
	}
	return rt.userID, nil
}

// ────────────────────────────────────────────────────────────────
// Dulces
// ────────────────────────────────────────────────────────────────

// ListSweets ordenados por id.
func (s *Store) ListSweets(_ context.Context) ([]entity.Sweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Sweet, 0, len(s.sweets))
	for _, sw := range s.sweets {
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SweetByID(_ context.Context, id int64) (*entity.Sweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sw, ok := s.sweets[id]
	if !ok {
		return nil, nil
	}
	return &sw, nil
}

func (s *Store) CreateSweet(_ context.Context, sw entity.Sweet) (entity.Sweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSweetID++
	sw.ID = s.nextSweetID
	s.sweets[sw.ID] = sw
	return sw, nil
}

func (s *Store) UpdateSweet(_ context.Context, id int64, fn func(*entity.Sweet) error) (entity.Sweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateSweetLocked(id, fn)
}

func (s *Store) updateSweetLocked(id int64, fn func(*entity.Sweet) error) (entity.Sweet, error) {
	sw, ok := s.sweets[id]
	if !ok {
		return entity.Sweet{}, domain.ErrNotFound
	}
	if err := fn(&sw); err != nil {
		return entity.Sweet{}, err
	}
	if sw.Quantity < 0 {
		return entity.Sweet{}, domain.ErrInsufficientStock
	}
	sw.ID = id
	s.sweets[id] = sw
	return sw, nil
}

func (s *Store) DeleteSweet(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sweets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sweets, id)
	return nil
}

// ────────────────────────────────────────────────────────────────
// Libro de compras
// ────────────────────────────────────────────────────────────────

func (s *Store) AppendPurchase(_ context.Context, e sandbox.LedgerEntry) (sandbox.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendPurchaseLocked(e), nil
}

// RecordPurchase descuenta el stock y anota la compra sin soltar el mutex.
func (s *Store) RecordPurchase(_ context.Context, id int64, fn func(*entity.Sweet) (sandbox.LedgerEntry, error)) (entity.Sweet, sandbox.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entry sandbox.LedgerEntry
	sw, err := s.updateSweetLocked(id, func(sw *entity.Sweet) error {
		var ferr error
		entry, ferr = fn(sw)
		return ferr
	})
	if err != nil {
		return entity.Sweet{}, sandbox.LedgerEntry{}, err
	}
	entry.SweetID = id
	return sw, s.appendPurchaseLocked(entry), nil
}

func (s *Store) appendPurchaseLocked(e sandbox.LedgerEntry) sandbox.LedgerEntry {
	s.nextPurchaseID++
	e.ID = s.nextPurchaseID
	s.purchases = append(s.purchases, e)
	return e
}

// Purchases más recientes primero; a igual instante, el id mayor primero.
func (s *Store) Purchases(_ context.Context) ([]sandbox.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sandbox.LedgerEntry, len(s.purchases))
	copy(out, s.purchases)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PurchasedAt.Equal(out[j].PurchasedAt) {
			return out[i].PurchasedAt.After(out[j].PurchasedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
