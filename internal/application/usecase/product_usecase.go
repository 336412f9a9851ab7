package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
	"github.com/jhoicas/pdv-api/pkg/money"
)

// ProductUseCase consultas del catálogo para el PDV y carga masiva por SKU.
// El stock solo cambia vía movimientos (ventas); aquí no se edita.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// GetByID obtiene un producto por ID. domain.ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos (por defecto solo activos) con búsqueda y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(in.Search),
		Category:   in.Category,
		OnlyActive: !in.All,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	return toProductList(list, in.Limit, in.Offset), nil
}

// LowStock lista productos con stock <= mínimo.
func (uc *ProductUseCase) LowStock(ctx context.Context, limit int) (*dto.ProductListResponse, error) {
	if limit <= 0 {
		limit = 100
	}
	list, err := uc.repo.ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toProductList(list, limit, 0), nil
}

// ImportRow fila de catálogo a importar.
type ImportRow struct {
	SKU         string
	Barcode     string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	CostPrice   decimal.Decimal
	Stock       int
	MinStock    int
	Unit        string
}

// Import inserta o actualiza productos por SKU. Devuelve cuántas filas se aplicaron.
func (uc *ProductUseCase) Import(ctx context.Context, userID string, rows []ImportRow) (int, error) {
	now := time.Now().UTC()
	n := 0
	for i, r := range rows {
		if r.SKU == "" || r.Name == "" {
			return n, domain.NewValidationError("row", fmt.Sprintf("sku y name son obligatorios (fila %d)", i+1))
		}
		if r.Price.IsNegative() || r.CostPrice.IsNegative() || r.Stock < 0 || r.MinStock < 0 {
			return n, domain.NewValidationError("row", fmt.Sprintf("valores negativos (fila %d)", i+1))
		}
		unit := r.Unit
		if unit == "" {
			unit = "un"
		}
		p := &entity.Product{
			ID:          uuid.New().String(),
			Name:        r.Name,
			Description: r.Description,
			Barcode:     r.Barcode,
			SKU:         r.SKU,
			Category:    r.Category,
			Price:       money.Round(r.Price),
			CostPrice:   money.Round(r.CostPrice),
			Stock:       r.Stock,
			MinStock:    r.MinStock,
			Unit:        unit,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   userID,
		}
		if err := uc.repo.Upsert(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func toProductList(list []*entity.Product, limit, offset int) *dto.ProductListResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		SKU:         p.SKU,
		Category:    p.Category,
		Price:       p.Price,
		CostPrice:   p.CostPrice,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		Unit:        p.Unit,
		IsActive:    p.IsActive,
		LowStock:    p.IsLowStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
