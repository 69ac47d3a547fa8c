package catalog

import (
	"sync"
	"time"
)

// Debouncer agrupa disparos rápidos: cada Trigger cancela el temporizador pendiente
// y solo el último que sobrevive a la ventana se ejecuta.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
}

// NewDebouncer crea un debouncer con la ventana dada.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger programa fn tras la ventana, descartando la programación anterior.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancela lo pendiente. Devuelve true si había algo programado.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
