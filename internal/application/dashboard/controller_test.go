package dashboard_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/internal/application/auth"
	"github.com/jhoicas/sweetshop/internal/application/dashboard"
	"github.com/jhoicas/sweetshop/internal/application/inventory"
	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/infrastructure/api"
	"github.com/jhoicas/sweetshop/internal/infrastructure/filestore"
	"github.com/jhoicas/sweetshop/internal/sandboxtest"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

type fixture struct {
	srv  *sandboxtest.Server
	ctrl *dashboard.Controller
}

func mount(t *testing.T, username, password string) fixture {
	t.Helper()
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})
	client := api.NewClient(api.ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	session := auth.NewSessionStore(api.NewAuthRepository(client), filestore.NewSessionStore(filepath.Join(t.TempDir(), "s.json")), logger.Nop())
	_, err := session.Login(context.Background(), username, password)
	require.NoError(t, err)

	ctrl := dashboard.New(dashboard.Deps{
		Session:  session,
		Sweets:   api.NewSweetRepository(client),
		History:  api.NewPurchaseHistoryRepository(client),
		Debounce: 20 * time.Millisecond,
		Logger:   logger.Nop(),
	})
	t.Cleanup(ctrl.Close)
	require.NoError(t, ctrl.Mount(context.Background()))
	return fixture{srv: srv, ctrl: ctrl}
}

func cardByName(t *testing.T, snap dashboard.Snapshot, name string) inventory.Card {
	t.Helper()
	for _, c := range snap.Cards {
		if c.Sweet.Name == name {
			return c
		}
	}
	t.Fatalf("no hay tarjeta %q", name)
	return inventory.Card{}
}

// waitChange espera la próxima notificación asíncrona.
func waitChange(t *testing.T, ctrl *dashboard.Controller) func() {
	t.Helper()
	ch := make(chan struct{}, 8)
	ctrl.OnChange(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return func() {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("sin notificación")
		}
	}
}

// ────────────────────────────────────────────────────────────────
// Mount
// ────────────────────────────────────────────────────────────────

func TestMount_UsuarioRegular(t *testing.T) {
	f := mount(t, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	snap := f.ctrl.Snapshot()

	assert.Len(t, snap.Cards, 6)
	assert.Equal(t, []string{"Chocolate", "Gummies", "Caramel", "Indian"}, snap.Categories)
	assert.Empty(t, snap.Banner)
	assert.False(t, snap.ShowHistory)
	assert.Equal(t, "View Purchase History", snap.HistoryToggle)
	assert.True(t, snap.History.Empty())

	rasgulla := cardByName(t, snap, "Rasgulla")
	assert.True(t, rasgulla.Permissions.PurchaseEnabled)
	assert.False(t, rasgulla.Permissions.Manage())
	assert.False(t, cardByName(t, snap, "Sour Worms").Permissions.PurchaseEnabled)
}

func TestMount_AdminGestionaSusDulces(t *testing.T) {
	f := mount(t, sandbox.SeedAdminUsername, sandbox.SeedAdminPassword)
	snap := f.ctrl.Snapshot()

	for _, c := range snap.Cards {
		assert.True(t, c.Permissions.Manage(), c.Sweet.Name)
		assert.False(t, c.Permissions.Purchase, c.Sweet.Name)
	}
	assert.True(t, snap.History.Admin)
	assert.Equal(t, "View All Purchases", snap.HistoryToggle)
}

func TestMount_SinSesion(t *testing.T) {
	ctrl := dashboard.New(dashboard.Deps{Session: &staticSession{}, Logger: logger.Nop()})
	assert.ErrorIs(t, ctrl.Mount(context.Background()), domain.ErrNotAuthenticated)
}

// ────────────────────────────────────────────────────────────────
// Compra
// ────────────────────────────────────────────────────────────────

// Caso 1: tras comprar q unidades el catálogo se relee y el stock baja exactamente q.
func TestPurchase_StockBajaExactamenteQ(t *testing.T) {
	f := mount(t, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	before := cardByName(t, f.ctrl.Snapshot(), "Rasgulla")

	_, err := f.ctrl.Purchase(context.Background(), before.Sweet.ID, 5)
	require.NoError(t, err)

	snap := f.ctrl.Snapshot()
	after := cardByName(t, snap, "Rasgulla")
	assert.Equal(t, before.Sweet.Quantity-5, after.Sweet.Quantity)

	require.Len(t, snap.History.Rows, 1)
	assert.True(t, decimal.RequireFromString("4.00").Equal(snap.History.Total()))
}

// Caso 2: cantidad mayor que el stock mostrado → rechazo local, el servidor no cambia.
func TestPurchase_ExcedeStockNoDespacha(t *testing.T) {
	f := mount(t, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	card := cardByName(t, f.ctrl.Snapshot(), "Salted Caramel")

	_, err := f.ctrl.Purchase(context.Background(), card.Sweet.ID, 13)
	require.Error(t, err)
	assert.Equal(t, "Only 12 items available in stock", err.Error())

	remote, err := f.srv.Sweets.List(context.Background())
	require.NoError(t, err)
	for _, s := range remote {
		if s.ID == card.Sweet.ID {
			assert.Equal(t, 12, s.Quantity)
		}
	}
	assert.True(t, f.ctrl.Snapshot().History.Empty())
}

func TestPurchase_AdminRechazadoLocalmente(t *testing.T) {
	f := mount(t, sandbox.SeedAdminUsername, sandbox.SeedAdminPassword)
	card := cardByName(t, f.ctrl.Snapshot(), "Rasgulla")

	_, err := f.ctrl.Purchase(context.Background(), card.Sweet.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ────────────────────────────────────────────────────────────────
// Gestión del admin
// ────────────────────────────────────────────────────────────────

func TestRestockYEdicion(t *testing.T) {
	f := mount(t, sandbox.SeedAdminUsername, sandbox.SeedAdminPassword)
	ctx := context.Background()
	worms := cardByName(t, f.ctrl.Snapshot(), "Sour Worms")

	_, err := f.ctrl.Restock(ctx, worms.Sweet.ID, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ctrl.Restock(ctx, worms.Sweet.ID, "15")
	require.NoError(t, err)
	assert.Equal(t, 15, cardByName(t, f.ctrl.Snapshot(), "Sour Worms").Sweet.Quantity)

	editor, err := f.ctrl.OpenEditor(worms.Sweet.ID)
	require.NoError(t, err)
	editor.Category = "Sour"
	_, err = f.ctrl.SaveItem(ctx, editor)
	require.NoError(t, err)

	snap := f.ctrl.Snapshot()
	assert.Equal(t, "Sour", cardByName(t, snap, "Sour Worms").Sweet.Category)
	assert.Contains(t, snap.Categories, "Sour", "el universo de categorías se relee tras guardar")
}

func TestAltaYBorrado(t *testing.T) {
	f := mount(t, sandbox.SeedAdminUsername, sandbox.SeedAdminPassword)
	ctx := context.Background()

	editor, err := f.ctrl.OpenEditor(0)
	require.NoError(t, err)
	editor.Name, editor.Category, editor.Price, editor.Quantity = "Kaju Katli", "Indian", "1.90", "30"
	created, err := f.ctrl.SaveItem(ctx, editor)
	require.NoError(t, err)
	assert.Len(t, f.ctrl.Snapshot().Cards, 7)

	deleted, err := f.ctrl.Delete(ctx, created.ID, inventory.ConfirmFunc(func(string) bool { return false }))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, f.ctrl.Snapshot().Cards, 7)

	deleted, err = f.ctrl.Delete(ctx, created.ID, inventory.ConfirmFunc(func(string) bool { return true }))
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, f.ctrl.Snapshot().Cards, 6)
}

func TestOpenEditor_UsuarioRegularRechazado(t *testing.T) {
	f := mount(t, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	_, err := f.ctrl.OpenEditor(0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	card := cardByName(t, f.ctrl.Snapshot(), "Rasgulla")
	_, err = f.ctrl.OpenEditor(card.Sweet.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.ctrl.Restock(context.Background(), card.Sweet.ID, "5")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ────────────────────────────────────────────────────────────────
// Filtros e historial
// ────────────────────────────────────────────────────────────────

func TestSetSearch_FiltraTrasDebounce(t *testing.T) {
	f := mount(t, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	wait := waitChange(t, f.ctrl)

	f.ctrl.SetSearch("gum")
	wait()

	snap := f.ctrl.Snapshot()
	require.Len(t, snap.Cards, 1)
	assert.Equal(t, "Gummy Bears", snap.Cards[0].Sweet.Name)
	assert.Equal(t, "gum", snap.Criteria.Name)
	assert.Len(t, snap.Categories, 4, "las categorías no dependen del filtro")
}

func TestSetCriteria_PrecioInvalidoVaAlBanner(t *testing.T) {
	f := mount(t, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	wait := waitChange(t, f.ctrl)

	f.ctrl.SetMinPrice("abc")
	wait()
	assert.Equal(t, "Minimum price must be a number", f.ctrl.Banner())
	assert.Len(t, f.ctrl.Snapshot().Cards, 6, "se conserva el último listado correcto")

	f.ctrl.DismissBanner()
	assert.Empty(t, f.ctrl.Banner())
}

func TestToggleHistory(t *testing.T) {
	f := mount(t, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	ctx := context.Background()

	require.NoError(t, f.ctrl.ToggleHistory(ctx))
	assert.True(t, f.ctrl.Snapshot().ShowHistory)
	assert.Equal(t, "Hide Purchase History", f.ctrl.Snapshot().HistoryToggle)

	require.NoError(t, f.ctrl.ToggleHistory(ctx))
	assert.False(t, f.ctrl.Snapshot().ShowHistory)
}

// ────────────────────────────────────────────────────────────────
// Errores de autenticación
// ────────────────────────────────────────────────────────────────

type staticSession struct {
	mu       sync.Mutex
	token    string
	identity *entity.Identity
	logouts  int
}

func (s *staticSession) Credentials() entity.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.Credentials{Token: s.token}
}

func (s *staticSession) Identity() (entity.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return entity.Identity{}, false
	}
	return *s.identity, true
}

func (s *staticSession) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	s.token, s.identity = "", nil
	return nil
}

// Caso 3: token rechazado → banner, sesión cerrada y vuelta al login.
func TestMount_TokenRechazado(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})
	client := api.NewClient(api.ClientConfig{BaseURL: srv.URL})
	session := &staticSession{token: "no-es-un-jwt", identity: &entity.Identity{ID: 2, Username: "alice", Role: entity.RoleUser}}

	ctrl := dashboard.New(dashboard.Deps{
		Session: session,
		Sweets:  api.NewSweetRepository(client),
		History: api.NewPurchaseHistoryRepository(client),
	})
	err := ctrl.Mount(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	snap := ctrl.Snapshot()
	assert.Equal(t, dashboard.BannerAuthFailed, snap.Banner)
	assert.True(t, snap.NeedsLogin)
	assert.Equal(t, 1, session.logouts)
	assert.Empty(t, session.Credentials().Token)
}

// ────────────────────────────────────────────────────────────────
// Errores del historial
// ────────────────────────────────────────────────────────────────

type failingHistory struct {
	mu  sync.Mutex
	err error
}

func (h *failingHistory) set(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
}

func (h *failingHistory) ListMine(context.Context, entity.Credentials) ([]entity.Purchase, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return nil, h.err
}

func (h *failingHistory) ListForAdmin(context.Context, entity.Credentials) ([]entity.AdminPurchase, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return nil, h.err
}

func mountWithHistory(t *testing.T, hist *failingHistory) *dashboard.Controller {
	t.Helper()
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})
	client := api.NewClient(api.ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	session := auth.NewSessionStore(api.NewAuthRepository(client), filestore.NewSessionStore(filepath.Join(t.TempDir(), "s.json")), logger.Nop())
	_, err := session.Login(context.Background(), sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	require.NoError(t, err)

	ctrl := dashboard.New(dashboard.Deps{
		Session:  session,
		Sweets:   api.NewSweetRepository(client),
		History:  hist,
		Debounce: 20 * time.Millisecond,
		Logger:   logger.Nop(),
	})
	t.Cleanup(ctrl.Close)
	require.NoError(t, ctrl.Mount(context.Background()), "el catálogo carga aunque falle el historial")
	return ctrl
}

// Caso 4: el historial responde 401 al montar; mismo trato que el catálogo
// pero el listado ya cargado se conserva.
func TestMount_HistorialNoAutorizado(t *testing.T) {
	hist := &failingHistory{err: &domain.APIError{Kind: domain.ErrUnauthorized, Status: 401, Detail: "Invalid token"}}
	ctrl := mountWithHistory(t, hist)

	snap := ctrl.Snapshot()
	assert.Equal(t, dashboard.BannerAuthFailed, snap.Banner)
	assert.True(t, snap.NeedsLogin)
	assert.NotEmpty(t, snap.Cards)
}

// Caso 5: el historial responde 500 al montar o al abrirlo; el detalle va al banner.
func TestHistorial_ErrorDelServidorVaAlBanner(t *testing.T) {
	hist := &failingHistory{err: &domain.APIError{Kind: domain.ErrServer, Status: 500, Detail: "Ledger unavailable"}}
	ctrl := mountWithHistory(t, hist)

	snap := ctrl.Snapshot()
	assert.Equal(t, "Ledger unavailable", snap.Banner)
	assert.False(t, snap.NeedsLogin)
	cards := len(snap.Cards)
	assert.NotZero(t, cards)

	ctrl.DismissBanner()
	hist.set(&domain.APIError{Kind: domain.ErrServer, Status: 500})
	err := ctrl.ToggleHistory(context.Background())
	assert.ErrorIs(t, err, domain.ErrServer)

	snap = ctrl.Snapshot()
	assert.Equal(t, dashboard.BannerHistoryFailed, snap.Banner)
	assert.False(t, snap.NeedsLogin)
	assert.Len(t, snap.Cards, cards)
}
