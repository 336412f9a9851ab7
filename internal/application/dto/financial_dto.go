package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialListRequest filtros de GET /api/financial/transactions.
type FinancialListRequest struct {
	PageRequest
	Type   string `query:"type" validate:"omitempty,oneof=receita despesa"`
	Status string `query:"status" validate:"omitempty,oneof=pendente pago cancelado"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// CreateFinancialRequest payload de POST /api/financial/transactions (asiento manual).
type CreateFinancialRequest struct {
	Type          string          `json:"type" validate:"required,oneof=receita despesa"`
	Category      string          `json:"category" validate:"required,max=100"`
	Description   string          `json:"description" validate:"required,max=300"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string          `json:"paymentMethod,omitempty" validate:"omitempty,oneof=dinheiro cartao_debito cartao_credito pix boleto"`
	Status        string          `json:"status,omitempty" validate:"omitempty,oneof=pendente pago cancelado"`
}

// FinancialTransactionResponse asiento financiero.
type FinancialTransactionResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Status        string          `json:"status"`
	RelatedSaleID string          `json:"relatedSaleId,omitempty"`
	CreatedBy     string          `json:"createdBy"`
}

// FinancialListResponse página del libro; los totales por tipo cubren todo el filtro.
type FinancialListResponse struct {
	Items        []FinancialTransactionResponse `json:"items"`
	TotalReceita decimal.Decimal                `json:"totalReceita"`
	TotalDespesa decimal.Decimal                `json:"totalDespesa"`
	Page         PageResponse                   `json:"page"`
}
