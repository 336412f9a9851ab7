package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
)

// FinancialFilter criterios de listado de transacciones financieras.
type FinancialFilter struct {
	Type   string
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// FinancialTransactionRepository puerto del libro financiero.
type FinancialTransactionRepository interface {
	Create(ctx context.Context, tx *entity.FinancialTransaction) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.FinancialTransaction, error)
	List(ctx context.Context, f FinancialFilter) ([]*entity.FinancialTransaction, error)
	// Totals suma amount por tipo sobre todo el filtro (ignora Limit/Offset).
	Totals(ctx context.Context, f FinancialFilter) (map[string]decimal.Decimal, error)
}
