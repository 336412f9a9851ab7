package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_movements (id, product_id, product_name, type, quantity, reason, related_sale_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.ProductID, m.ProductName, m.Type, m.Quantity, nullIfEmpty(m.Reason),
		nullIfEmpty(m.RelatedSaleID), m.CreatedAt, nullIfEmpty(m.CreatedBy),
	)
	if err != nil {
		return classify("create inventory movement", err)
	}
	return nil
}

// ListBySale movimientos generados por una venta, en orden de creación.
func (r *InventoryMovementRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, product_name, type, quantity, reason, related_sale_id, created_at, created_by
		FROM inventory_movements WHERE related_sale_id = $1 ORDER BY created_at, id`, saleID)
	if err != nil {
		return nil, classify("list movements", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryMovement, 0)
	for rows.Next() {
		var m entity.InventoryMovement
		var reason, related, createdBy *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.Type, &m.Quantity,
			&reason, &related, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Reason = fromNull(reason)
		m.RelatedSaleID = fromNull(related)
		m.CreatedBy = fromNull(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
