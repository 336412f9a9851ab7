// Package sales contiene las reglas puras de una venta: normalización de líneas,
// aritmética de totales y los asientos (movimientos + ingreso) que genera.
package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/pkg/money"
)

// Line línea pedida al confirmar una venta.
type Line struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Totals resultado de ComputeTotals; Items ya viene con Total por línea.
type Totals struct {
	Items    []entity.SaleItem
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Normalize valida las líneas y une las del mismo producto sumando cantidades.
// Mantiene el orden de primera aparición. Líneas del mismo producto con precios distintos son inválidas.
func Normalize(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for i, l := range lines {
		if l.ProductID == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].productId", i), "requerido")
		}
		if l.Quantity <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que 0")
		}
		if l.UnitPrice.IsNegative() {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].unitPrice", i), "no puede ser negativo")
		}
		if j, ok := index[l.ProductID]; ok {
			if !out[j].UnitPrice.Equal(l.UnitPrice) {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].unitPrice", i), "precio distinto para el mismo producto")
			}
			out[j].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

// ComputeTotals calcula total por línea, subtotal y total:
// lineTotal = round(q × unitPrice), subtotal = Σ lineTotal, total = subtotal - round(discount).
// El descuento debe estar en [0, subtotal].
func ComputeTotals(lines []Line, discount decimal.Decimal) (Totals, error) {
	lines, err := Normalize(lines)
	if err != nil {
		return Totals{}, err
	}
	if discount.IsNegative() {
		return Totals{}, domain.NewValidationError("discount", "no puede ser negativo")
	}

	items := make([]entity.SaleItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		lt := money.LineTotal(l.Quantity, l.UnitPrice)
		subtotal = subtotal.Add(lt)
		items = append(items, entity.SaleItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money.Round(l.UnitPrice),
			Total:       lt,
		})
	}
	subtotal = money.Round(subtotal)
	discount = money.Round(discount)
	if discount.GreaterThan(subtotal) {
		return Totals{}, domain.NewValidationError("discount", "no puede superar el subtotal")
	}

	return Totals{
		Items:    items,
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}
