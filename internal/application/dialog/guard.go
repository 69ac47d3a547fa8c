// Package dialog formularios modales de mutación: alta/edición de dulces, compra y
// nueva contraseña. Validan localmente y no permiten dos envíos simultáneos.
package dialog

import (
	"sync"

	"github.com/jhoicas/sweetshop/internal/domain"
)

// submitGuard marca el formulario como enviando mientras una petición está en vuelo.
type submitGuard struct {
	mu   sync.Mutex
	busy bool
}

func (g *submitGuard) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return domain.ErrBusy
	}
	g.busy = true
	return nil
}

func (g *submitGuard) end() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

// Submitting indica si hay un envío en curso.
func (g *submitGuard) Submitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}
