package receipt

import (
	"context"
	"fmt"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// Renderer genera el comprobante de una venta (PDF).
type Renderer interface {
	RenderSaleReceipt(ctx context.Context, sale *entity.Sale) ([]byte, error)
}

// Cache guarda comprobantes ya generados. Get devuelve (nil, nil) si no hay entrada.
type Cache interface {
	Get(ctx context.Context, saleID string) ([]byte, error)
	Put(ctx context.Context, saleID string, pdf []byte) error
}

// Service genera comprobantes tras la venta y los sirve bajo demanda.
type Service struct {
	renderer Renderer
	cache    Cache
	saleRepo repository.SaleRepository
	log      *logger.Logger
}

// NewService construye el servicio. cache puede ser nil (sin caché).
func NewService(renderer Renderer, cache Cache, saleRepo repository.SaleRepository, log *logger.Logger) *Service {
	return &Service{renderer: renderer, cache: cache, saleRepo: saleRepo, log: log.Component("receipt")}
}

// Publish genera el comprobante de una venta recién confirmada y lo deja en caché.
func (s *Service) Publish(ctx context.Context, sale *entity.Sale) error {
	pdf, err := s.renderer.RenderSaleReceipt(ctx, sale)
	if err != nil {
		return fmt.Errorf("receipt: render: %w", err)
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Put(ctx, sale.ID, pdf); err != nil {
		return fmt.Errorf("receipt: cache: %w", err)
	}
	return nil
}

// Get devuelve el PDF de la venta y el nombre de archivo sugerido.
// Retorna domain.ErrNotFound si la venta no existe.
func (s *Service) Get(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	filename := fmt.Sprintf("venda_%s.pdf", sale.Number)

	if s.cache != nil {
		pdf, err := s.cache.Get(ctx, saleID)
		if err != nil {
			s.log.Warn().Err(err).Str("sale_id", saleID).Msg("caché de comprobantes no disponible")
		} else if pdf != nil {
			return pdf, filename, nil
		}
	}

	pdf, err := s.renderer.RenderSaleReceipt(ctx, sale)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: render: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, saleID, pdf); err != nil {
			s.log.Warn().Err(err).Str("sale_id", saleID).Msg("no se pudo cachear el comprobante")
		}
	}
	return pdf, filename, nil
}
