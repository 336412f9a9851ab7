// Package pdf genera el comprobante de venta del PDV con Maroto v2.
//
// Layout (papel de 80mm):
//
//	┌──────────────────────────────┐
//	│  Nombre de la tienda         │
//	│  Venda #NUM  + fecha/hora    │
//	│  Cliente (opcional)          │
//	│  ──────────────────────────  │
//	│  Qtd | Produto | Total       │
//	│  ──────────────────────────  │
//	│  Subtotal / Desconto / TOTAL │
//	│  Forma de pagamento          │
//	│  QR con el número de venta   │
//	└──────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/application/receipt"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/pkg/money"
)

var _ receipt.Renderer = (*ReceiptRenderer)(nil)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// Etiquetas legibles de los métodos de pago.
var paymentLabels = map[string]string{
	entity.PaymentDinheiro:      "Dinheiro",
	entity.PaymentCartaoDebito:  "Cartão de débito",
	entity.PaymentCartaoCredito: "Cartão de crédito",
	entity.PaymentPix:           "PIX",
	entity.PaymentBoleto:        "Boleto",
}

// ReceiptRenderer implementa receipt.Renderer.
type ReceiptRenderer struct {
	storeName string
}

// NewReceiptRenderer construye el renderer; storeName encabeza el comprobante.
func NewReceiptRenderer(storeName string) *ReceiptRenderer {
	return &ReceiptRenderer{storeName: storeName}
}

// RenderSaleReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptRenderer) RenderSaleReceipt(_ context.Context, sale *entity.Sale) ([]byte, error) {
	// El alto crece con la cantidad de ítems.
	height := 120 + float64(len(sale.Items))*6
	cfg := config.NewBuilder().
		WithDimensions(80, height).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Venda #"+sale.Number, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(g.storeName, sale)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.2}))
	m.AddRows(itemHeaderRow())
	m.AddRows(itemRows(sale.Items)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.2}))
	m.AddRows(totalRows(sale)...)
	m.AddRows(footerRows(sale)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRows(storeName string, sale *entity.Sale) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(storeName, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center}),
		)),
		row.New(5).Add(
			col.New(6).Add(text.New("Venda #"+sale.Number, props.Text{Style: fontstyle.Bold})),
			col.New(6).Add(text.New(sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{Align: align.Right, Color: colorGray})),
		),
	}
	if sale.CustomerName != "" {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New("Cliente: "+sale.CustomerName, props.Text{Color: colorGray}),
		)))
	}
	return rows
}

func itemHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Align: a}))
	}
	return row.New(4).Add(
		h("Qtd", 2, align.Left),
		h("Produto", 6, align.Left),
		h("Total", 4, align.Right),
	)
}

func itemRows(items []entity.SaleItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(strconv.Itoa(it.Quantity)+"x")),
			col.New(6).Add(
				text.New(it.ProductName),
				text.New(money.Format(it.UnitPrice), props.Text{Size: 6, Top: 3, Color: colorGray}),
			),
			col.New(4).Add(text.New(money.Format(it.Total), props.Text{Align: align.Right})),
		))
	}
	return rows
}

func totalRows(sale *entity.Sale) []core.Row {
	pair := func(label string, v decimal.Decimal, style fontstyle.Type, size float64) core.Row {
		return row.New(size/2+2).Add(
			col.New(6).Add(text.New(label, props.Text{Style: style, Size: size})),
			col.New(6).Add(text.New(money.Format(v), props.Text{Style: style, Size: size, Align: align.Right})),
		)
	}
	rows := []core.Row{pair("Subtotal", sale.Subtotal, fontstyle.Normal, 7)}
	if sale.Discount.IsPositive() {
		rows = append(rows, pair("Desconto", sale.Discount.Neg(), fontstyle.Normal, 7))
	}
	rows = append(rows,
		pair("TOTAL", sale.Total, fontstyle.Bold, 9),
		row.New(5).Add(col.New(12).Add(
			text.New("Pagamento: "+paymentLabel(sale.PaymentMethod), props.Text{Top: 1}),
		)),
	)
	return rows
}

func footerRows(sale *entity.Sale) []core.Row {
	return []core.Row{
		row.New(24).Add(
			col.New(3),
			col.New(6).Add(code.NewQr(sale.Number, props.Rect{Percent: 95, Center: true})),
			col.New(3),
		),
		row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%d itens - obrigado pela preferência!", sale.ItemCount()),
				props.Text{Align: align.Center, Color: colorGray, Size: 6}),
		)),
	}
}

func paymentLabel(m string) string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return m
}
