package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y estados de transacción financiera.
const (
	FinancialTypeReceita = "receita"
	FinancialTypeDespesa = "despesa"

	FinancialStatusPendente  = "pendente"
	FinancialStatusPago      = "pago"
	FinancialStatusCancelado = "cancelado"
)

// FinancialCategorySales categoría de los ingresos generados por ventas.
const FinancialCategorySales = "Vendas"

// FinancialTransaction asiento del libro de ingresos/egresos.
type FinancialTransaction struct {
	ID            string
	Type          string
	Category      string
	Description   string
	Amount        decimal.Decimal
	Date          time.Time
	PaymentMethod string
	Status        string
	RelatedSaleID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
}
