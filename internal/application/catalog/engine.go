// Package catalog motor de consultas del catálogo: traduce filtros, agrupa cambios
// rápidos y garantiza que solo la respuesta más reciente llegue a la pantalla.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// DefaultDebounce ventana por defecto entre cambios de filtro.
const DefaultDebounce = 300 * time.Millisecond

// Result resultado entregado por Schedule.
type Result struct {
	Seq      uint64 // secuencia del despacho que produjo el resultado
	Criteria entity.FilterCriteria
	Sweets   []entity.Sweet
	Err      error
}

// Engine motor de consultas. Cada Fetch toma un número de secuencia creciente; al
// despachar uno nuevo se cancela el anterior y su respuesta se descarta.
type Engine struct {
	repo     repository.SweetRepository
	debounce *Debouncer
	log      *logger.Logger

	seq      atomic.Uint64
	mu       sync.Mutex
	inflight context.CancelFunc
}

// NewEngine construye el motor. window <= 0 usa DefaultDebounce.
func NewEngine(repo repository.SweetRepository, window time.Duration, log *logger.Logger) *Engine {
	if window <= 0 {
		window = DefaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{repo: repo, debounce: NewDebouncer(window), log: log.Component("catalog")}
}

// Fetch lee el catálogo: listado completo si no hay criterios, búsqueda si hay alguno.
// Devuelve domain.ErrStaleResponse si mientras tanto se despachó otra consulta.
// Unos criterios inválidos también reemplazan a la consulta en vuelo.
func (e *Engine) Fetch(ctx context.Context, creds entity.Credentials, criteria entity.FilterCriteria) ([]entity.Sweet, error) {
	_, sweets, err := e.fetch(ctx, creds, criteria)
	return sweets, err
}

// fetch devuelve además el número de secuencia de este despacho.
func (e *Engine) fetch(ctx context.Context, creds entity.Credentials, criteria entity.FilterCriteria) (uint64, []entity.Sweet, error) {
	seq, reqCtx, cancel := e.supersede(ctx)
	defer cancel()

	query, err := BuildQuery(criteria)
	if err != nil {
		e.release(seq)
		return seq, nil, err
	}

	var sweets []entity.Sweet
	if len(query) == 0 {
		sweets, err = e.repo.List(reqCtx, creds)
	} else {
		sweets, err = e.repo.Search(reqCtx, creds, query)
	}

	if latest := e.release(seq); latest != seq {
		e.log.Debug().Uint64("seq", seq).Uint64("latest", latest).Msg("respuesta descartada")
		return seq, nil, domain.ErrStaleResponse
	}
	if err != nil {
		return seq, nil, err
	}
	return seq, sweets, nil
}

// supersede toma la siguiente secuencia y cancela la consulta en vuelo.
func (e *Engine) supersede(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	defer e.mu.Unlock()
	seq := e.seq.Add(1)
	if e.inflight != nil {
		e.inflight()
	}
	e.inflight = cancel
	return seq, reqCtx, cancel
}

// release libera la ranura en vuelo si seq sigue siendo la última y devuelve la última.
func (e *Engine) release(seq uint64) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	latest := e.seq.Load()
	if latest == seq {
		e.inflight = nil
	}
	return latest
}

// Schedule programa un Fetch tras la ventana de debounce. Solo se entrega el resultado
// de la última programación; las respuestas obsoletas nunca llegan a deliver.
func (e *Engine) Schedule(ctx context.Context, creds entity.Credentials, criteria entity.FilterCriteria, deliver func(Result)) {
	e.debounce.Trigger(func() {
		seq, sweets, err := e.fetch(ctx, creds, criteria)
		if errors.Is(err, domain.ErrStaleResponse) {
			return
		}
		deliver(Result{Seq: seq, Criteria: criteria, Sweets: sweets, Err: err})
	})
}

// Cancel descarta lo programado y cancela la consulta en vuelo.
func (e *Engine) Cancel() {
	e.debounce.Stop()
	e.seq.Add(1)
	e.mu.Lock()
	if e.inflight != nil {
		e.inflight()
		e.inflight = nil
	}
	e.mu.Unlock()
}

// Categories universo de categorías a partir del listado sin filtrar, para que el
// desplegable no quede restringido por el filtro actual. Distintas, en orden de aparición.
func (e *Engine) Categories(ctx context.Context, creds entity.Credentials) ([]string, error) {
	sweets, err := e.repo.List(ctx, creds)
	if err != nil {
		return nil, err
	}
	return DistinctCategories(sweets), nil
}

// DistinctCategories categorías no vacías sin repetir, en orden de aparición.
func DistinctCategories(sweets []entity.Sweet) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, s := range sweets {
		c := strings.TrimSpace(s.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
