package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/jhoicas/sweetshop/internal/application/history"
	"github.com/jhoicas/sweetshop/internal/application/inventory"
	"github.com/jhoicas/sweetshop/pkg/money"
)

// ui salida del CLI: mensajes de estado con color y tablas.
type ui struct {
	out    io.Writer
	errOut io.Writer
	money  *money.Formatter

	info    *color.Color
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	header  *color.Color
}

func newUI(out, errOut io.Writer, f *money.Formatter) *ui {
	return &ui{
		out:     out,
		errOut:  errOut,
		money:   f,
		info:    color.New(color.FgBlue),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		header:  color.New(color.FgYellow, color.Bold),
	}
}

func (u *ui) Info(format string, a ...interface{}) {
	u.info.Fprintf(u.out, "ℹ "+format+"\n", a...)
}

func (u *ui) Success(format string, a ...interface{}) {
	u.success.Fprintf(u.out, "✓ "+format+"\n", a...)
}

func (u *ui) Warn(format string, a ...interface{}) {
	u.warn.Fprintf(u.out, "⚠ "+format+"\n", a...)
}

func (u *ui) Error(format string, a ...interface{}) {
	u.fail.Fprintf(u.errOut, "✗ "+format+"\n", a...)
}

func (u *ui) Header(title string) {
	u.header.Fprintf(u.out, "\n=== %s ===\n", title)
}

// Cards tabla del catálogo con las acciones disponibles en cada fila.
func (u *ui) Cards(cards []inventory.Card) {
	if len(cards) == 0 {
		fmt.Fprintln(u.out, "No sweets found.")
		return
	}
	table := tablewriter.NewWriter(u.out)
	table.SetHeader([]string{"ID", "Name", "Category", "Price", "Stock", "Actions"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})
	for _, c := range cards {
		table.Append([]string{
			strconv.FormatInt(c.Sweet.ID, 10),
			c.Sweet.Name,
			c.Sweet.Category,
			u.money.Format(c.Sweet.Price),
			c.StockLabel(),
			actions(c.Permissions),
		})
	}
	table.Render()
}

func actions(p inventory.Permissions) string {
	var parts []string
	if p.Purchase {
		if p.PurchaseEnabled {
			parts = append(parts, "buy")
		} else {
			parts = append(parts, "(sold out)")
		}
	}
	if p.Restock {
		parts = append(parts, "restock")
	}
	if p.Edit {
		parts = append(parts, "edit")
	}
	if p.Delete {
		parts = append(parts, "delete")
	}
	return strings.Join(parts, " ")
}

// History tabla del historial con el total en el pie.
func (u *ui) History(v history.View) {
	u.Header(v.Title())
	if v.Empty() {
		fmt.Fprintln(u.out, v.EmptyMessage())
		return
	}
	header := []string{"Date", "Sweet Name", "Category", "Quantity", "Unit Price", "Total Price"}
	if v.Admin {
		header = append([]string{"User"}, header...)
	}
	table := tablewriter.NewWriter(u.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	for _, r := range v.Rows {
		row := []string{
			r.PurchasedAt.Local().Format("2006-01-02 15:04"),
			r.SweetName,
			r.Category,
			strconv.Itoa(r.Quantity),
			u.money.Format(r.UnitPrice),
			u.money.Format(r.Total),
		}
		if v.Admin {
			row = append([]string{r.Purchaser}, row...)
		}
		table.Append(row)
	}
	footer := make([]string, len(header))
	footer[len(footer)-2] = v.TotalLabel() + ":"
	footer[len(footer)-1] = u.money.Format(v.Total())
	table.SetFooter(footer)
	table.Render()
}
