// Package pdf genera el historial de compras en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título de la vista  │  Usuario + Fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: [Usuario] | Fecha | Dulce | Categoría | Cant | ...   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL: Total Spent / Total Revenue                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/sweetshop/internal/application/history"
	"github.com/jhoicas/sweetshop/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 102, Green: 126, Blue: 234}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa history.Exporter usando Maroto v2.
type MarotoPDFGenerator struct{}

var _ history.Exporter = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Export genera el PDF de la vista y devuelve sus bytes.
func (g *MarotoPDFGenerator) Export(_ context.Context, view history.View, meta history.ExportMeta) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(view.Title(), true).
		WithAuthor(meta.Username, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(view, meta))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if view.Empty() {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New(view.EmptyMessage(), props.Text{Size: 9, Align: align.Center, Top: 4, Color: colorGray}),
		)))
	} else {
		m.AddRows(tableHeaderRow(view.Admin))
		for _, r := range tableRows(view) {
			m.AddRows(r)
		}
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(totalRow(view))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y usuario + fecha de generación (der).
func headerRow(view history.View, meta history.ExportMeta) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(view.Title(), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(strconv.Itoa(len(view.Rows))+" purchases", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(meta.Username, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Generated: "+meta.GeneratedAt.Format("2006-01-02 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: la columna de usuario solo existe en la vista del admin.
func tableHeaderRow(admin bool) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	cols := make([]core.Col, 0, 7)
	dateSize := 3
	if admin {
		cols = append(cols, h("User", 2, align.Left))
		dateSize = 2
	}
	cols = append(cols,
		h("Date", dateSize, align.Left),
		h("Sweet Name", 2, align.Left),
		h("Category", 2, align.Left),
		h("Qty", 1, align.Right),
		h("Unit Price", 1, align.Right),
		h("Total Price", 1, align.Right),
	)
	return row.New(8).Add(cols...)
}

// tableRows: una fila por compra, en el orden de la vista.
func tableRows(view history.View) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(view.Rows))
	for _, r := range view.Rows {
		cols := make([]core.Col, 0, 7)
		dateSize := 3
		if view.Admin {
			cols = append(cols, cell(r.Purchaser, 2, align.Left))
			dateSize = 2
		}
		cols = append(cols,
			cell(r.PurchasedAt.Format("2006-01-02 15:04"), dateSize, align.Left),
			cell(r.SweetName, 2, align.Left),
			cell(r.Category, 2, align.Left),
			cell(strconv.Itoa(r.Quantity), 1, align.Right),
			cell(money.Plain(r.UnitPrice), 1, align.Right),
			cell(money.Plain(r.Total), 1, align.Right),
		)
		result = append(result, row.New(7).Add(cols...))
	}
	return result
}

// totalRow: Total Spent / Total Revenue alineado a la derecha.
func totalRow(view history.View) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New(view.TotalLabel()+":", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 2,
		})),
		col.New(2).Add(text.New(money.Plain(view.Total()), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}
