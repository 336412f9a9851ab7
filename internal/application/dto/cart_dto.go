package dto

import "github.com/shopspring/decimal"

// AddCartItemRequest agrega un producto al carrito de sesión.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

// UpdateCartItemRequest cambia la cantidad de una línea (<= 0 la elimina).
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// SetDiscountRequest fija el descuento del carrito.
type SetDiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

// SetCustomerRequest selecciona (o limpia, con campos vacíos) el cliente del carrito.
type SetCustomerRequest struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName" validate:"omitempty,max=200"`
}

// CheckoutRequest confirma el carrito de sesión como venta.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=dinheiro cartao_debito cartao_credito pix boleto"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// CartLineResponse línea del carrito.
type CartLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// CartResponse estado completo del carrito.
type CartResponse struct {
	SessionID    string             `json:"sessionId"`
	Items        []CartLineResponse `json:"items"`
	CustomerID   string             `json:"customerId,omitempty"`
	CustomerName string             `json:"customerName,omitempty"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	Discount     decimal.Decimal    `json:"discount"`
	Total        decimal.Decimal    `json:"total"`
	ItemCount    int                `json:"itemCount"`
}
