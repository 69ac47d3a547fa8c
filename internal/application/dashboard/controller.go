// Package dashboard controlador de la pantalla principal: catálogo filtrado, historial
// y acciones de cada tarjeta. Es el único dueño del listado mostrado y del historial;
// ambos se reemplazan completos en cada lectura correcta.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/sweetshop/internal/application/catalog"
	"github.com/jhoicas/sweetshop/internal/application/dialog"
	"github.com/jhoicas/sweetshop/internal/application/history"
	"github.com/jhoicas/sweetshop/internal/application/inventory"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// Textos del banner.
const (
	BannerAuthFailed    = "Authentication failed. Please login again."
	BannerAccessDenied  = "Access denied. You do not have permission."
	BannerLoadFailed    = "Failed to load sweets. Please try again."
	BannerHistoryFailed = "Failed to load purchase history. Please try again."
)

// Session lo que el controlador necesita de la sesión.
type Session interface {
	Credentials() entity.Credentials
	Identity() (entity.Identity, bool)
	Logout() error
}

// Deps dependencias del controlador.
type Deps struct {
	Session  Session
	Sweets   repository.SweetRepository
	History  repository.PurchaseHistoryRepository
	Exporter history.Exporter
	Criteria entity.FilterCriteria // criterios iniciales
	Debounce time.Duration
	Logger   *logger.Logger
}

// Controller estado de la pantalla principal. Seguro para uso concurrente: el
// debounce entrega resultados desde su propia goroutine.
type Controller struct {
	session   Session
	sweets    repository.SweetRepository
	engine    *catalog.Engine
	inventory *inventory.UseCase
	history   *history.UseCase
	log       *logger.Logger

	mu          sync.Mutex
	ctx         context.Context
	criteria    entity.FilterCriteria
	items       []entity.Sweet
	categories  []string
	loading     bool
	showHistory bool
	historyView history.View
	banner      string
	needsLogin  bool
	listeners   []func()
}

// New construye el controlador.
func New(d Deps) *Controller {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		session:   d.Session,
		sweets:    d.Sweets,
		engine:    catalog.NewEngine(d.Sweets, d.Debounce, log),
		inventory: inventory.NewUseCase(d.Sweets, log),
		history:   history.NewUseCase(d.History, d.Exporter),
		log:       log.Component("dashboard"),
		ctx:       context.Background(),
		criteria:  d.Criteria,
	}
}

// Mount carga catálogo, universo de categorías e historial según el rol.
// Devuelve el error de la carga del catálogo; los fallos de las tres lecturas van al banner.
func (c *Controller) Mount(ctx context.Context) error {
	identity, ok := c.session.Identity()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	err := c.Refresh(ctx)
	c.refreshCategories(ctx)
	_ = c.loadHistory(ctx, identity)
	c.notify()
	return err
}

// Close descarta la búsqueda pendiente.
func (c *Controller) Close() { c.engine.Cancel() }

// OnChange registra fn para avisar tras cada actualización asíncrona.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// Refresh relee el catálogo con los criterios actuales, sin esperar el debounce.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	criteria := c.criteria
	c.loading = true
	c.mu.Unlock()

	sweets, err := c.engine.Fetch(ctx, c.session.Credentials(), criteria)
	if errors.Is(err, domain.ErrStaleResponse) {
		return nil
	}
	c.apply(sweets, err)
	c.notify()
	return err
}

func (c *Controller) apply(sweets []entity.Sweet, err error) {
	c.mu.Lock()
	c.loading = false
	if err == nil {
		c.items = sweets
		c.banner = ""
	}
	c.mu.Unlock()
	if err != nil {
		c.fail(err, BannerLoadFailed, "error al cargar el catálogo")
	}
}

// fail lleva un error de lectura al banner sin tocar el listado mostrado. Un 401
// cierra la sesión una sola vez; las cancelaciones se ignoran.
func (c *Controller) fail(err error, fallback, msg string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	logout := false
	c.mu.Lock()
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.banner = BannerAuthFailed
		logout = !c.needsLogin
		c.needsLogin = true
	case errors.Is(err, domain.ErrForbidden):
		c.banner = BannerAccessDenied
	default:
		c.banner = domain.Detail(err, fallback)
	}
	c.mu.Unlock()

	c.log.Warn().Err(err).Msg(msg)
	if logout {
		if lerr := c.session.Logout(); lerr != nil {
			c.log.Error().Err(lerr).Msg("no se pudo limpiar la sesión")
		}
	}
}

func (c *Controller) refreshCategories(ctx context.Context) {
	cats, err := c.engine.Categories(ctx, c.session.Credentials())
	if err != nil {
		c.fail(err, BannerLoadFailed, "no se pudieron leer las categorías")
		return
	}
	c.mu.Lock()
	c.categories = cats
	c.mu.Unlock()
}

// SetSearch cambia el texto de búsqueda por nombre.
func (c *Controller) SetSearch(name string) {
	c.updateCriteria(func(f *entity.FilterCriteria) { f.Name = name })
}

// SetCategory cambia la categoría ("" = todas).
func (c *Controller) SetCategory(category string) {
	c.updateCriteria(func(f *entity.FilterCriteria) { f.Category = category })
}

// SetMinPrice cambia el precio mínimo tal como se escribe.
func (c *Controller) SetMinPrice(raw string) {
	c.updateCriteria(func(f *entity.FilterCriteria) { f.MinPrice = raw })
}

// SetMaxPrice cambia el precio máximo tal como se escribe.
func (c *Controller) SetMaxPrice(raw string) {
	c.updateCriteria(func(f *entity.FilterCriteria) { f.MaxPrice = raw })
}

// SetCriteria reemplaza todos los criterios.
func (c *Controller) SetCriteria(criteria entity.FilterCriteria) {
	c.updateCriteria(func(f *entity.FilterCriteria) { *f = criteria })
}

func (c *Controller) updateCriteria(fn func(*entity.FilterCriteria)) {
	c.mu.Lock()
	fn(&c.criteria)
	criteria := c.criteria
	ctx := c.ctx
	c.loading = true
	c.mu.Unlock()

	c.engine.Schedule(ctx, c.session.Credentials(), criteria, func(r catalog.Result) {
		c.apply(r.Sweets, r.Err)
		c.notify()
	})
}

// ── Historial ─────────────────────────────────────────────────────────────────

// ToggleHistory muestra u oculta el historial. Al mostrarlo se relee el libro.
func (c *Controller) ToggleHistory(ctx context.Context) error {
	c.mu.Lock()
	c.showHistory = !c.showHistory
	shown := c.showHistory
	c.mu.Unlock()

	if !shown {
		c.notify()
		return nil
	}
	return c.ReloadHistory(ctx)
}

// ReloadHistory relee el historial del rol actual.
func (c *Controller) ReloadHistory(ctx context.Context) error {
	identity, ok := c.session.Identity()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	err := c.loadHistory(ctx, identity)
	c.notify()
	return err
}

func (c *Controller) loadHistory(ctx context.Context, identity entity.Identity) error {
	view, err := c.history.Load(ctx, c.session.Credentials(), identity)
	if err != nil {
		c.fail(err, BannerHistoryFailed, "no se pudo leer el historial")
		return err
	}
	c.mu.Lock()
	c.historyView = view
	c.mu.Unlock()
	return nil
}

// ExportHistory genera el historial imprimible del usuario actual.
func (c *Controller) ExportHistory(ctx context.Context) ([]byte, string, error) {
	identity, ok := c.session.Identity()
	if !ok {
		return nil, "", domain.ErrNotAuthenticated
	}
	return c.history.Export(ctx, c.session.Credentials(), identity)
}

// ── Banner ────────────────────────────────────────────────────────────────────

// Banner mensaje de error de la última lectura, "" si no hay.
func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// DismissBanner oculta el banner.
func (c *Controller) DismissBanner() {
	c.mu.Lock()
	c.banner = ""
	c.mu.Unlock()
	c.notify()
}

// NeedsLogin indica que el servidor rechazó la credencial y la sesión se cerró.
func (c *Controller) NeedsLogin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsLogin
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// Card tarjeta actual del dulce id según el último listado.
func (c *Controller) Card(id int64) (inventory.Card, error) {
	identity, _ := c.session.Identity()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.items {
		if s.ID == id {
			return inventory.NewCard(identity, s), nil
		}
	}
	return inventory.Card{}, fmt.Errorf("dulce %d: %w", id, domain.ErrNotFound)
}

// OpenPurchase abre el diálogo de compra si la tarjeta lo permite.
func (c *Controller) OpenPurchase(id int64) (*dialog.PurchaseDialog, error) {
	card, err := c.Card(id)
	if err != nil {
		return nil, err
	}
	if err := inventory.CheckPurchase(card); err != nil {
		return nil, err
	}
	return dialog.NewPurchaseDialog(card.Sweet), nil
}

// ConfirmPurchase envía la compra del diálogo y, si sale bien, relee catálogo e historial.
func (c *Controller) ConfirmPurchase(ctx context.Context, d *dialog.PurchaseDialog) (*entity.Sweet, error) {
	creds := c.session.Credentials()
	updated, err := d.Confirm(ctx, dialog.PurchaseFunc(func(ctx context.Context, id int64, qty int) (*entity.Sweet, error) {
		return c.sweets.Purchase(ctx, creds, id, qty)
	}))
	if err != nil {
		return nil, err
	}
	c.log.Info().Int64("sweet_id", updated.ID).Int("quantity", d.Quantity()).Msg("compra realizada")
	c.afterMutation(ctx, true)
	return updated, nil
}

// Purchase abre el diálogo, fija la cantidad y confirma.
func (c *Controller) Purchase(ctx context.Context, id int64, quantity int) (*entity.Sweet, error) {
	d, err := c.OpenPurchase(id)
	if err != nil {
		return nil, err
	}
	d.SetQuantity(quantity)
	return c.ConfirmPurchase(ctx, d)
}

// Restock repone el dulce con la cantidad escrita.
func (c *Controller) Restock(ctx context.Context, id int64, raw string) (*entity.Sweet, error) {
	card, err := c.Card(id)
	if err != nil {
		return nil, err
	}
	updated, err := c.inventory.Restock(ctx, c.session.Credentials(), card, raw)
	if err != nil {
		return nil, err
	}
	c.afterMutation(ctx, false)
	return updated, nil
}

// OpenEditor abre el formulario de alta (id 0) o de edición.
func (c *Controller) OpenEditor(id int64) (*dialog.ItemEditor, error) {
	identity, ok := c.session.Identity()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if id == 0 {
		if !identity.IsAdmin() {
			return nil, &inventory.PermissionError{Message: "Admin access required"}
		}
		return dialog.NewItemEditor(nil), nil
	}
	card, err := c.Card(id)
	if err != nil {
		return nil, err
	}
	if err := inventory.CheckEdit(card); err != nil {
		return nil, err
	}
	sweet := card.Sweet
	return dialog.NewItemEditor(&sweet), nil
}

// SaveItem envía el formulario y relee catálogo y categorías.
func (c *Controller) SaveItem(ctx context.Context, e *dialog.ItemEditor) (*entity.Sweet, error) {
	saved, err := e.Submit(ctx, boundSaver{repo: c.sweets, creds: c.session.Credentials()})
	if err != nil {
		return nil, err
	}
	c.log.Info().Int64("sweet_id", saved.ID).Bool("edit", e.Editing()).Msg("dulce guardado")
	c.afterMutation(ctx, false)
	c.refreshCategories(ctx)
	return saved, nil
}

// Delete elimina el dulce tras confirmación.
func (c *Controller) Delete(ctx context.Context, id int64, confirm inventory.Confirmer) (bool, error) {
	card, err := c.Card(id)
	if err != nil {
		return false, err
	}
	deleted, err := c.inventory.Delete(ctx, c.session.Credentials(), card, confirm)
	if err != nil || !deleted {
		return deleted, err
	}
	c.afterMutation(ctx, false)
	c.refreshCategories(ctx)
	return true, nil
}

// afterMutation relee el catálogo (sin actualizaciones optimistas) y, tras una
// compra, el historial. Los errores de relectura van al banner.
func (c *Controller) afterMutation(ctx context.Context, purchased bool) {
	_ = c.Refresh(ctx)
	if purchased {
		_ = c.ReloadHistory(ctx)
	}
}

type boundSaver struct {
	repo  repository.SweetRepository
	creds entity.Credentials
}

func (s boundSaver) Create(ctx context.Context, in repository.SweetInput) (*entity.Sweet, error) {
	return s.repo.Create(ctx, s.creds, in)
}

func (s boundSaver) Update(ctx context.Context, id int64, in repository.SweetInput) (*entity.Sweet, error) {
	return s.repo.Update(ctx, s.creds, id, in)
}
