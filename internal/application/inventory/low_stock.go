package inventory

import (
	"context"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// LowStockMonitor detecta productos activos con stock <= stock mínimo.
type LowStockMonitor struct {
	productRepo repository.ProductRepository
	log         *logger.Logger
	limit       int
}

// NewLowStockMonitor construye el monitor.
func NewLowStockMonitor(productRepo repository.ProductRepository, log *logger.Logger) *LowStockMonitor {
	return &LowStockMonitor{productRepo: productRepo, log: log.Component("low-stock"), limit: 500}
}

// Check lista los productos en alerta y emite un warning por cada uno.
func (m *LowStockMonitor) Check(ctx context.Context) ([]*entity.Product, error) {
	products, err := m.productRepo.ListLowStock(ctx, m.limit)
	if err != nil {
		m.log.Error().Err(err).Msg("no se pudo consultar stock bajo")
		return nil, err
	}
	for _, p := range products {
		level := "bajo"
		if p.Stock == 0 {
			level = "agotado"
		}
		m.log.Warn().
			Str("product_id", p.ID).
			Str("sku", p.SKU).
			Str("name", p.Name).
			Int("stock", p.Stock).
			Int("min_stock", p.MinStock).
			Str("level", level).
			Msg("stock bajo")
	}
	if len(products) > 0 {
		m.log.Info().Int("count", len(products)).Msg("verificación de stock bajo finalizada")
	}
	return products, nil
}
