package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/infrastructure/pdf"
)

func TestRenderSaleReceipt(t *testing.T) {
	sale := &entity.Sale{
		ID:     "v1",
		Number: "ABC12345",
		Items: []entity.SaleItem{
			{ProductID: "p1", ProductName: "Caderno", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99"), Total: decimal.RequireFromString("39.98")},
		},
		Subtotal:      decimal.RequireFromString("39.98"),
		Discount:      decimal.RequireFromString("5.00"),
		Total:         decimal.RequireFromString("34.98"),
		PaymentMethod: entity.PaymentPix,
		CustomerName:  "Maria Silva",
		CreatedAt:     time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	out, err := pdf.NewReceiptRenderer("Papelaria Central").RenderSaleReceipt(context.Background(), sale)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
