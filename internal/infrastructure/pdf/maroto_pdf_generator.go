// Package pdf genera el acta de entrega o devolución de una guía de insumos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del acta     │  N° Guía + Fecha + Estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESPONSABLE / DESTINO / GUÍA ORIGEN                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Insumo | Cód. patrimonial | V.Unit | Total    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Unidades / Valor referencial                      │
//	│  FIRMAS: Entregué conforme │ Recibí conforme                │
//	│  FOOTER: Código de verificación + QR                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
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

	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 20, Blue: 20}
)

var _ ledger.GuidePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ledger.GuidePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	organization string // se imprime como autor y subtítulo del acta
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(organization string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{organization: organization}
}

// GenerateGuidePDF genera el acta y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateGuidePDF(_ context.Context, doc *ledger.GuideDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf: documento nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Title+" "+doc.GuideNumber, true).
		WithAuthor(nonEmpty(g.organization, "Almacén"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, g.organization))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(doc))
	if doc.Observation != "" {
		m.AddRows(observationRow(doc.Observation))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(12))
	m.AddRows(signaturesRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(verificationRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título del acta (izq) y número de guía + fecha (der).
func headerRow(doc *ledger.GuideDocument, organization string) core.Row {
	right := []core.Component{
		text.New("GUÍA", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
		}),
		text.New(doc.GuideNumber, props.Text{
			Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
		}),
		text.New("Fecha: "+doc.IssuedAt.Format("02/01/2006 15:04"), props.Text{
			Size: 8, Align: align.Right, Top: 14, Color: colorGray,
		}),
	}
	if doc.Status == entity.MovementAnnulled {
		right = append(right, text.New("ANULADA por "+doc.AnnulledBy, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 18, Color: colorRed,
		}))
	}

	return row.New(22).Add(
		col.New(7).Add(
			text.New(strings.ToUpper(doc.Title), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(organization, "Almacén de insumos"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(right...),
	)
}

// partiesRow: responsable, destino y guía origen.
func partiesRow(doc *ledger.GuideDocument) core.Row {
	ref := "Dirección: " + doc.Direction
	if doc.OriginGuideNumber != "" {
		ref += "   |   Guía origen: " + doc.OriginGuideNumber
	}
	return row.New(20).Add(
		col.New(12).Add(
			text.New("RESPONSABLE Y DESTINO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("DNI responsable: %s   |   Establecimiento: %s",
				doc.ResponsibleID,
				nonEmpty(doc.DestinationID, "—"),
			), props.Text{Size: 9, Top: 6}),
			text.New(fmt.Sprintf("Entrega: %s   |   Recibe: %s",
				nonEmpty(doc.DelivererName, "—"),
				nonEmpty(doc.ReceiverName, "—"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
			text.New(ref, props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

func observationRow(obs string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("Observación: "+obs, props.Text{Size: 8, Top: 1, Color: colorGray}),
	))
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Insumo", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Cód. patrimonial / Serie", 2, align.Left),
		h("V. Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableDetailRows: una fila por movimiento de la guía.
func tableDetailRows(lines []ledger.DocumentLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		asset := strings.Trim(l.AssetCode+" / "+l.Serial, " /")
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(l.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(l.ItemName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(nonEmpty(l.Unit, "—"),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(nonEmpty(asset, "—"),
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(formatMoney(l.UnitValue),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(l.Total),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: unidades y valor referencial alineados a la derecha.
func totalsRow(doc *ledger.GuideDocument) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	grandValue := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top,
		})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			label("Total unidades:"),
			text.New("Valor referencial:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
		),
		col.New(3).Add(
			grandValue(strconv.Itoa(doc.TotalUnits), 0),
			grandValue(formatMoney(doc.TotalValue), 6),
		),
	)
}

// signaturesRow: líneas de firma de quien entrega y quien recibe.
func signaturesRow(doc *ledger.GuideDocument) core.Row {
	sign := func(caption, name string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(caption, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 5}),
			text.New(nonEmpty(name, " "), props.Text{Size: 8, Align: align.Center, Top: 9, Color: colorGray}),
		)
	}
	return row.New(16).Add(
		sign("ENTREGUÉ CONFORME", doc.DelivererName),
		sign("RECIBÍ CONFORME", doc.ReceiverName),
	)
}

// verificationRows: código de verificación partido + QR.
func verificationRows(doc *ledger.GuideDocument) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("VERIFICACIÓN DEL DOCUMENTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	if doc.VerificationCode == "" {
		return rows
	}
	chunks := splitEvery(doc.VerificationCode, 32)
	lines := make([]core.Component, 0, len(chunks)+1)
	lines = append(lines, text.New("Código SHA-256 del XML canónico de la guía:", props.Text{
		Style: fontstyle.Bold, Size: 7, Top: 2, Left: 3,
	}))
	for i, chunk := range chunks {
		lines = append(lines, text.New(chunk, props.Text{
			Family: "courier", Size: 7, Color: colorGray, Top: float64(7 + 4*i), Left: 3,
		}))
	}
	rows = append(rows, row.New(32).Add(
		col.New(3).Add(code.NewQr(doc.GuideNumber+"|"+doc.VerificationCode, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(9).Add(lines...),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con separador de miles y dos decimales.
// Ej: 1234.5 → "S/ 1,234.50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return "S/ " + sign + string(buf) + "." + frac
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
