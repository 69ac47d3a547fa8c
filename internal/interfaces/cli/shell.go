package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/sweetshop/internal/application/catalog"
	"github.com/jhoicas/sweetshop/internal/application/dashboard"
	"github.com/jhoicas/sweetshop/internal/application/dialog"
	"github.com/jhoicas/sweetshop/internal/application/inventory"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

const shellHelp = `Commands:
  list | refresh            reload the catalog
  search <text>             filter by name
  category <name|all>       filter by category
  min [price] | max [price] price bounds (no value clears)
  clear                     remove all filters
  buy <id> [quantity]       purchase (users)
  restock <id> <quantity>   restock an owned sweet (admins)
  add | edit <id>           create or edit a sweet (admins)
  delete <id>               delete an owned sweet (admins)
  history                   show or hide the purchase history
  pdf [path]                export the purchase history to PDF
  dismiss                   hide the error banner
  logout | quit`

// renderDelay agrupa las notificaciones seguidas en un solo repintado.
const renderDelay = 50 * time.Millisecond

func (a *App) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Abre el dashboard interactivo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return a.runShell(cmd.Context(), ctrl)
		},
	}
}

func (a *App) runShell(ctx context.Context, ctrl *dashboard.Controller) error {
	// mu serializa la salida entre los comandos y los repintados asíncronos.
	var mu sync.Mutex
	closed := false
	render := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			a.render(ctrl.Snapshot())
		}
	}
	repaint := catalog.NewDebouncer(renderDelay)
	defer func() {
		repaint.Stop()
		mu.Lock()
		closed = true
		mu.Unlock()
	}()
	ctrl.OnChange(func() { repaint.Trigger(render) })

	user, _ := a.session.Identity()
	a.ui.Header(fmt.Sprintf("Sweet Shop Management System · %s (%s)", user.Username, user.Role))
	render()

	for {
		mu.Lock()
		fmt.Fprint(a.ui.out, "sweetshop> ")
		mu.Unlock()
		line, err := a.prompt("")
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		mu.Lock()
		quit, err := a.shellLine(ctx, ctrl, line)
		if err != nil {
			a.ui.Error("%s", a.message(err))
		}
		if ctrl.NeedsLogin() {
			a.ui.Error("%s Run `sweetshop login`.", dashboard.BannerAuthFailed)
			quit = true
		}
		mu.Unlock()
		if quit {
			return nil
		}
	}
}

// shellLine ejecuta una línea. Devuelve true para salir.
func (a *App) shellLine(ctx context.Context, ctrl *dashboard.Controller, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		fmt.Fprintln(a.ui.out, shellHelp)
	case "quit", "exit":
		return true, nil
	case "logout":
		if err := a.session.Logout(); err != nil {
			return false, err
		}
		a.ui.Success("Logged out")
		return true, nil
	case "list", "refresh":
		return false, ctrl.Refresh(ctx)
	case "search":
		ctrl.SetSearch(rest)
	case "category":
		if strings.EqualFold(rest, "all") {
			rest = ""
		}
		ctrl.SetCategory(rest)
	case "min":
		ctrl.SetMinPrice(rest)
	case "max":
		ctrl.SetMaxPrice(rest)
	case "clear":
		ctrl.SetCriteria(entity.FilterCriteria{})
	case "dismiss":
		ctrl.DismissBanner()
	case "history":
		return false, ctrl.ToggleHistory(ctx)
	case "pdf":
		doc, name, err := ctrl.ExportHistory(ctx)
		if err != nil {
			return false, err
		}
		if rest != "" {
			name = rest
		}
		if err := os.WriteFile(name, doc, 0o644); err != nil {
			return false, err
		}
		a.ui.Success("Saved %s", name)
	case "buy":
		id, err := parseID(arg(1))
		if err != nil {
			return false, err
		}
		qty := 1
		if q := arg(2); q != "" {
			if qty, err = strconv.Atoi(q); err != nil {
				return false, domain.NewValidationError("quantity", "Quantity must be a whole number")
			}
		}
		return false, a.purchase(ctx, ctrl, id, qty)
	case "restock":
		id, err := parseID(arg(1))
		if err != nil {
			return false, err
		}
		updated, err := ctrl.Restock(ctx, id, arg(2))
		if err != nil {
			return false, err
		}
		a.ui.Success("%s restocked. %s", updated.Name, updated.StockLabel())
	case "add", "edit":
		var id int64
		if strings.EqualFold(fields[0], "edit") {
			var err error
			if id, err = parseID(arg(1)); err != nil {
				return false, err
			}
		}
		editor, err := ctrl.OpenEditor(id)
		if err != nil {
			return false, err
		}
		if err := a.fillEditor(editor); err != nil {
			return false, err
		}
		saved, err := ctrl.SaveItem(ctx, editor)
		if err != nil {
			return false, err
		}
		a.ui.Success("Saved %s", saved.Name)
	case "delete":
		id, err := parseID(arg(1))
		if err != nil {
			return false, err
		}
		deleted, err := ctrl.Delete(ctx, id, inventory.ConfirmFunc(a.confirmer(false)))
		if err != nil {
			return false, err
		}
		if deleted {
			a.ui.Success("Deleted sweet %d", id)
		}
	default:
		a.ui.Warn("Unknown command %q. Type `help`.", fields[0])
	}
	return false, nil
}

// fillEditor pide cada campo mostrando el valor actual; Enter lo conserva.
func (a *App) fillEditor(e *dialog.ItemEditor) error {
	a.ui.Header(e.Title())
	fields := []struct {
		label string
		value *string
	}{
		{"Name", &e.Name},
		{"Category", &e.Category},
		{"Price", &e.Price},
		{"Quantity", &e.Quantity},
	}
	for _, f := range fields {
		label := f.label
		if *f.value != "" {
			label = fmt.Sprintf("%s [%s]", f.label, *f.value)
		}
		v, err := a.prompt(label)
		if err != nil {
			return err
		}
		if v != "" {
			*f.value = v
		}
	}
	return nil
}

// render pinta banner, catálogo e historial si está visible.
func (a *App) render(s dashboard.Snapshot) {
	if s.Banner != "" {
		a.ui.Warn("%s", s.Banner)
	}
	if c := s.Criteria.Normalized(); !c.IsEmpty() {
		a.ui.Info("Filters: name=%q category=%q min=%q max=%q", c.Name, c.Category, c.MinPrice, c.MaxPrice)
	}
	a.ui.Cards(s.Cards)
	if s.ShowHistory {
		a.ui.History(s.History)
	}
	a.ui.Info("[%s] · type `help` for commands", s.HistoryToggle)
}
