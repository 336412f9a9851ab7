package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
)

// SaleFilter criterios de listado de ventas.
type SaleFilter struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod string
	CashierID     string
	Limit         int
	Offset        int
}

// SaleRepository puerto de persistencia de ventas (con ítems embebidos).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
}
