// Package money concentra el redondeo monetario: todo valor persistido tiene 2 decimales.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places cantidad de decimales de los importes persistidos.
const Places = 2

// Round redondea a centavos (half-away-from-zero, como toFixed(2)).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineTotal devuelve round(qty × unitPrice).
func LineTotal(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
}

// Sum suma y redondea.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round(total)
}

// Format devuelve el importe con el formato de recibo: R$ 1.234,56
func Format(d decimal.Decimal) string {
	d = Round(d)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(Places)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	var out []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, out, frac)
}
