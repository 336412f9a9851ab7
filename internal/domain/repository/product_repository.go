package repository

import (
	"context"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
)

// ProductFilter criterios de listado de productos.
type ProductFilter struct {
	Search     string // nombre, SKU o código de barras
	Category   string
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto y lo bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// DecrementStock resta qty si stock >= qty y devuelve el stock resultante.
	// Si el stock no alcanza devuelve *domain.InsufficientStockError.
	DecrementStock(ctx context.Context, id string, qty int) (int, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error)
	// Upsert inserta o actualiza por SKU (usado por la carga de catálogo).
	Upsert(ctx context.Context, product *entity.Product) error
}
