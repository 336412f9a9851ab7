package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea del payload de confirmación de venta.
// Total es opcional; si viene se compara con el cálculo del servidor.
type SaleItemRequest struct {
	ProductID   string           `json:"productId" validate:"required"`
	ProductName string           `json:"productName" validate:"omitempty,max=200"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	Total       *decimal.Decimal `json:"total,omitempty"`
}

// CreateSaleRequest payload de POST /api/sales.
// Subtotal y Total enviados por el cliente se validan contra el cálculo del servidor.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" validate:"dive"`
	CustomerID    string            `json:"customerId,omitempty"`
	CustomerName  string            `json:"customerName,omitempty" validate:"omitempty,max=200"`
	Subtotal      *decimal.Decimal  `json:"subtotal,omitempty"`
	Discount      decimal.Decimal   `json:"discount"`
	Total         *decimal.Decimal  `json:"total,omitempty"`
	PaymentMethod string            `json:"paymentMethod" validate:"required,oneof=dinheiro cartao_debito cartao_credito pix boleto"`
	Notes         string            `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// SaleItemResponse línea de una venta confirmada.
type SaleItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// SaleResponse venta confirmada.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	CustomerID    string             `json:"customerId,omitempty"`
	CustomerName  string             `json:"customerName,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	CashierID     string             `json:"cashierId"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// SaleListRequest filtros de GET /api/sales (fechas en formato 2006-01-02).
type SaleListRequest struct {
	PageRequest
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `query:"paymentMethod" validate:"omitempty,oneof=dinheiro cartao_debito cartao_credito pix boleto"`
	CashierID     string `query:"cashierId"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// MovementResponse movimiento de inventario.
type MovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Reason        string    `json:"reason"`
	RelatedSaleID string    `json:"relatedSaleId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// SaleLedgerResponse asientos generados por una venta.
type SaleLedgerResponse struct {
	SaleID       string                         `json:"saleId"`
	Movements    []MovementResponse             `json:"movements"`
	Transactions []FinancialTransactionResponse `json:"transactions"`
	Consistent   bool                           `json:"consistent"`
}
