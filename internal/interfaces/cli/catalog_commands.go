package cli

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/sweetshop/internal/application/dashboard"
	"github.com/jhoicas/sweetshop/internal/application/dialog"
	"github.com/jhoicas/sweetshop/internal/application/inventory"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError("id", "Invalid sweet id: "+raw)
	}
	return id, nil
}

func (a *App) listCmd() *cobra.Command {
	var criteria entity.FilterCriteria
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "search"},
		Short:   "Lista el catálogo, con filtros opcionales",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.dashboard(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			a.ui.Cards(ctrl.Snapshot().Cards)
			return nil
		},
	}
	cmd.Flags().StringVarP(&criteria.Name, "name", "n", "", "parte del nombre")
	cmd.Flags().StringVarP(&criteria.Category, "category", "c", "", "categoría exacta")
	cmd.Flags().StringVar(&criteria.MinPrice, "min-price", "", "precio mínimo")
	cmd.Flags().StringVar(&criteria.MaxPrice, "max-price", "", "precio máximo")
	return cmd
}

func (a *App) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Lista las categorías del catálogo completo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			for _, c := range ctrl.Snapshot().Categories {
				a.ui.Info("%s", c)
			}
			return nil
		},
	}
}

func (a *App) buyCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "buy <id>",
		Short: "Compra unidades de un dulce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return a.purchase(cmd.Context(), ctrl, id, quantity)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "unidades")
	return cmd
}

func (a *App) purchase(ctx context.Context, ctrl *dashboard.Controller, id int64, quantity int) error {
	d, err := ctrl.OpenPurchase(id)
	if err != nil {
		return err
	}
	d.SetQuantity(quantity)
	total := d.Total()
	updated, err := ctrl.ConfirmPurchase(ctx, d)
	if err != nil {
		return err
	}
	a.ui.Success("Purchased %s of %s. Total: %s", d.Summary(), updated.Name, a.ui.money.Format(total))
	a.ui.Info("%s left", updated.StockLabel())
	return nil
}

func (a *App) restockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restock <id> <quantity>",
		Short: "Repone stock de un dulce propio (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			updated, err := ctrl.Restock(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			a.ui.Success("%s restocked. %s", updated.Name, updated.StockLabel())
			return nil
		},
	}
}

// itemFlags campos del formulario de dulce expuestos como flags.
type itemFlags struct {
	name, category, price, quantity string
}

func (f *itemFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "nombre")
	cmd.Flags().StringVar(&f.category, "category", "", "categoría")
	cmd.Flags().StringVar(&f.price, "price", "", "precio unitario")
	cmd.Flags().StringVar(&f.quantity, "quantity", "", "unidades en stock")
}

// apply copia al formulario solo los flags indicados.
func (f *itemFlags) apply(cmd *cobra.Command, e *dialog.ItemEditor) {
	if cmd.Flags().Changed("name") {
		e.Name = f.name
	}
	if cmd.Flags().Changed("category") {
		e.Category = f.category
	}
	if cmd.Flags().Changed("price") {
		e.Price = f.price
	}
	if cmd.Flags().Changed("quantity") {
		e.Quantity = f.quantity
	}
}

func (a *App) addCmd() *cobra.Command {
	var flags itemFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Da de alta un dulce (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			editor, err := ctrl.OpenEditor(0)
			if err != nil {
				return err
			}
			flags.apply(cmd, editor)
			saved, err := ctrl.SaveItem(cmd.Context(), editor)
			if err != nil {
				return err
			}
			a.ui.Success("Created %s (id %d)", saved.Name, saved.ID)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var flags itemFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edita un dulce propio (admin); solo cambian los flags indicados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			editor, err := ctrl.OpenEditor(id)
			if err != nil {
				return err
			}
			flags.apply(cmd, editor)
			saved, err := ctrl.SaveItem(cmd.Context(), editor)
			if err != nil {
				return err
			}
			a.ui.Success("Updated %s", saved.Name)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina un dulce propio (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			deleted, err := ctrl.Delete(cmd.Context(), id, inventory.ConfirmFunc(a.confirmer(yes)))
			if err != nil {
				return err
			}
			if !deleted {
				a.ui.Info("Cancelled")
				return nil
			}
			a.ui.Success("Deleted sweet %d", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "no pedir confirmación")
	return cmd
}

func (a *App) historyCmd() *cobra.Command {
	var pdfPath string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Muestra el historial de compras (el del admin: ventas de sus dulces)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := a.dashboard(cmd.Context(), entity.FilterCriteria{})
			if err != nil {
				return err
			}
			defer ctrl.Close()
			if pdfPath == "" {
				a.ui.History(ctrl.Snapshot().History)
				return nil
			}
			doc, name, err := ctrl.ExportHistory(cmd.Context())
			if err != nil {
				return err
			}
			if pdfPath == "-" {
				pdfPath = name
			}
			if err := os.WriteFile(pdfPath, doc, 0o644); err != nil {
				return err
			}
			a.ui.Success("Saved %s", pdfPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "exporta a PDF en la ruta dada (\"-\" usa el nombre sugerido)")
	return cmd
}
