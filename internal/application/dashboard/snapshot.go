package dashboard

import (
	"github.com/jhoicas/sweetshop/internal/application/history"
	"github.com/jhoicas/sweetshop/internal/application/inventory"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// Snapshot vista inmutable de la pantalla en un instante.
type Snapshot struct {
	Identity      entity.Identity
	Criteria      entity.FilterCriteria
	Categories    []string
	Cards         []inventory.Card
	Loading       bool
	ShowHistory   bool
	History       history.View
	HistoryToggle string
	Banner        string
	NeedsLogin    bool
}

// Empty indica que el listado no tiene dulces.
func (s Snapshot) Empty() bool { return len(s.Cards) == 0 }

// Snapshot copia el estado actual.
func (c *Controller) Snapshot() Snapshot {
	identity, _ := c.session.Identity()

	c.mu.Lock()
	defer c.mu.Unlock()
	view := c.historyView
	view.Rows = append([]history.Row(nil), c.historyView.Rows...)
	return Snapshot{
		Identity:      identity,
		Criteria:      c.criteria,
		Categories:    append([]string(nil), c.categories...),
		Cards:         inventory.NewCards(identity, c.items),
		Loading:       c.loading,
		ShowHistory:   c.showHistory,
		History:       view,
		HistoryToggle: history.ToggleLabel(identity.IsAdmin(), c.showHistory),
		Banner:        c.banner,
		NeedsLogin:    c.needsLogin,
	}
}
