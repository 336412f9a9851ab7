package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, description, barcode, sku, category, price, cost_price, stock, min_stock, unit, is_active, version, created_at, updated_at, created_by`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var desc, barcode, category, createdBy *string
	err := row.Scan(
		&p.ID, &p.Name, &desc, &barcode, &p.SKU, &category, &p.Price, &p.CostPrice,
		&p.Stock, &p.MinStock, &p.Unit, &p.IsActive, &p.Version, &p.CreatedAt, &p.UpdatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	p.Description = fromNull(desc)
	p.Barcode = fromNull(barcode)
	p.Category = fromNull(category)
	p.CreatedBy = fromNull(createdBy)
	return &p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get product", err)
	}
	return p, nil
}

// GetForUpdate lee el producto con FOR UPDATE; el lock se libera con el fin de la tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("lock product", err)
	}
	return p, nil
}

// DecrementStock resta qty con guarda stock >= qty en la misma sentencia.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`, id, qty).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if isCheckViolation(err) {
			return 0, &domain.InsufficientStockError{ProductID: id, Requested: qty}
		}
		return 0, classify("decrement stock", err)
	}
	// Ninguna fila: el producto no existe o el stock no alcanza.
	var available int
	if err := r.q.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, classify("decrement stock", err)
	}
	return available, &domain.InsufficientStockError{ProductID: id, Available: available, Requested: qty}
}

// List filtra por búsqueda/categoría/activos, ordena por nombre y pagina.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	qb := psql.Select(productColumns).From("products").OrderBy("name ASC", "id ASC")
	if f.OnlyActive {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}
	if f.Category != "" {
		qb = qb.Where("lower(category) = ?", strings.ToLower(f.Category))
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.Expr("lower(name) LIKE ?", like),
			squirrel.Expr("lower(sku) LIKE ?", like),
			squirrel.Eq{"barcode": f.Search},
		})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	return r.query(ctx, "list products", qb)
}

// ListLowStock productos activos con stock <= min_stock, los más críticos primero.
func (r *ProductRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	qb := psql.Select(productColumns).From("products").
		Where("is_active AND stock <= min_stock").
		OrderBy("stock ASC", "name ASC")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	return r.query(ctx, "list low stock", qb)
}

func (r *ProductRepo) query(ctx context.Context, op string, qb squirrel.SelectBuilder) ([]*entity.Product, error) {
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Upsert inserta o actualiza por SKU. En conflicto conserva id y created_at y devuelve el id real.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13, $14, $15)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, barcode = EXCLUDED.barcode,
			category = EXCLUDED.category, price = EXCLUDED.price, cost_price = EXCLUDED.cost_price,
			stock = EXCLUDED.stock, min_stock = EXCLUDED.min_stock, unit = EXCLUDED.unit,
			is_active = EXCLUDED.is_active, version = products.version + 1, updated_at = EXCLUDED.updated_at
		RETURNING id, version, created_at`,
		p.ID, p.Name, nullIfEmpty(p.Description), nullIfEmpty(p.Barcode), p.SKU, nullIfEmpty(p.Category),
		p.Price, p.CostPrice, p.Stock, p.MinStock, p.Unit, p.IsActive,
		p.CreatedAt, p.UpdatedAt, nullIfEmpty(p.CreatedBy),
	).Scan(&p.ID, &p.Version, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("upsert product", err)
	}
	return nil
}
