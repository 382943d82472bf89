// Package pdf renderiza la factura de la agencia con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Agencia + NIT        │  N° Factura + Estado + Fechas │
//	│  EMISOR: Dirección / Tel / Email                             │
//	│  CLIENTE: Nombre + empresa + contacto   PROYECTO (opcional)  │
//	│  TABLA: Cant | Descripción | Servicio | P.Unit | Imp% | Total │
//	│  TOTALES: Subtotal / Impuestos / Total / Pagado / Saldo      │
//	│  NOTAS Y TÉRMINOS                                            │
//	│  QR de referencia de pago                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes. No modifica inv.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice, company entity.CompanyInfo) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+inv.InvoiceNumber, true).
		WithAuthor(nonEmpty(company.Name, "Agencia"), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(inv, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(company))
	m.AddRows(clientRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(inv)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))
	m.AddRows(notesRows(inv)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(paymentRefRow(inv))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(inv *entity.Invoice, company entity.CompanyInfo) core.Row {
	issued := "—"
	if inv.IssueDate != nil {
		issued = inv.IssueDate.Format("02/01/2006")
	}
	return row.New(22).Add(
		col.New(7).Add(
			text.New(nonEmpty(company.Name, "Agencia"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+nonEmpty(company.TaxID, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA · "+strings.ToUpper(string(inv.Status)), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Emisión: "+issued, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Vence: "+inv.DueDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

func issuerRow(company entity.CompanyInfo) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("EMISOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func clientRow(inv *entity.Invoice) core.Row {
	c := inv.ClientInfo
	client := col.New(7).Add(
		text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(c.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		text.New(fmt.Sprintf("%s   |   %s   |   %s",
			nonEmpty(c.Company, "—"),
			nonEmpty(c.Email, "—"),
			nonEmpty(c.Phone, "—"),
		), props.Text{Size: 8, Top: 12, Color: colorGray}),
	)
	project := col.New(5)
	if p := inv.ProjectInfo; p != nil {
		project.Add(
			text.New("PROYECTO", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(p.Name, props.Text{Size: 9, Align: align.Right, Top: 6}),
		)
	}
	return row.New(18).Add(client, project)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 4, align.Left),
		h("Servicio", 2, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Imp.%", 1, align.Center),
		h("Total", 2, align.Right),
	)
}

func itemRows(inv *entity.Invoice) []core.Row {
	out := make([]core.Row, 0, len(inv.Items))
	for _, it := range inv.Items {
		rate := invoice.EffectiveRate(it, inv.TaxPolicy)
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(it.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(it.ServiceType, "—"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(formatAmount(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(rate.String()+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatAmount(invoice.ItemTotal(it)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string, top float64, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 2, Top: top}
		if bold {
			p.Style = fontstyle.Bold
			p.Color = colorPrimary
		}
		return text.New(s, p)
	}
	cur := " " + inv.Currency
	return row.New(30).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 0, false),
			label("Impuestos:", 5, false),
			label("TOTAL:", 10, true),
			label("Pagado:", 16, false),
			label("SALDO:", 21, true),
		),
		col.New(3).Add(
			label(formatAmount(inv.Subtotal)+cur, 0, false),
			label(formatAmount(inv.TaxAmount)+cur, 5, false),
			label(formatAmount(inv.TotalAmount)+cur, 10, true),
			label(formatAmount(invoice.PaidAmount(inv))+cur, 16, false),
			label(formatAmount(invoice.Balance(inv))+cur, 21, true),
		),
	)
}

func notesRows(inv *entity.Invoice) []core.Row {
	var rows []core.Row
	add := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(body, props.Text{Size: 8, Top: 6, Color: colorGray}),
		)))
	}
	add("NOTAS", inv.Notes)
	add("TÉRMINOS", inv.Terms)
	return rows
}

// paymentRefRow QR con número y saldo para conciliar el pago.
func paymentRefRow(inv *entity.Invoice) core.Row {
	ref := fmt.Sprintf("%s|%s|%s", inv.InvoiceNumber, invoice.Balance(inv).StringFixed(2), inv.Currency)
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referencia de pago", props.Text{Style: fontstyle.Bold, Size: 9, Top: 6, Left: 3, Color: colorPrimary}),
			text.New(ref, props.Text{Size: 8, Top: 12, Left: 3, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount dos decimales con puntos de miles y coma decimal.
// Ej: 142000 → "142.000,00", -1234.5 → "-1.234,50"
func formatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	buf = append(buf, ',')
	buf = append(buf, frac...)
	return string(buf)
}
