package repository

import (
	"context"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.InventoryMovement, error)
}
