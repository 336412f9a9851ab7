package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de venta.
const (
	SaleStatusPendente  = "pendente"
	SaleStatusConcluida = "concluida"
	SaleStatusCancelada = "cancelada"
)

// Métodos de pago aceptados.
const (
	PaymentDinheiro      = "dinheiro"
	PaymentCartaoDebito  = "cartao_debito"
	PaymentCartaoCredito = "cartao_credito"
	PaymentPix           = "pix"
	PaymentBoleto        = "boleto"
)

// PaymentMethods lista cerrada de métodos de pago.
var PaymentMethods = []string{PaymentDinheiro, PaymentCartaoDebito, PaymentCartaoCredito, PaymentPix, PaymentBoleto}

// IsValidPaymentMethod indica si m pertenece a PaymentMethods.
func IsValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Sale venta confirmada. Los ítems van embebidos (snapshot de nombre y precio al momento de la venta).
// Total = Subtotal - Discount, todos redondeados a 2 decimales.
type Sale struct {
	ID            string
	Number        string // número corto de recibo
	CustomerID    string
	CustomerName  string
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Status        string
	Notes         string
	CashierID     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
}

// SaleItem línea de una venta.
type SaleItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// ItemCount suma de cantidades de la venta.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
