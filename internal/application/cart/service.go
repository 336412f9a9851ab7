package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// Service carritos de sesión del PDV: carga el snapshot, aplica la mutación bajo lock y lo guarda.
type Service struct {
	store       Store
	locker      Locker
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewService construye el servicio de carritos.
func NewService(store Store, locker Locker, productRepo repository.ProductRepository, log *logger.Logger) *Service {
	return &Service{store: store, locker: locker, productRepo: productRepo, log: log.Component("cart")}
}

// Get devuelve el carrito de la sesión (vacío si no existe).
func (s *Service) Get(ctx context.Context, sessionID string) (*dto.CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ToResponse(c), nil
}

// AddItem agrega un producto activo al carrito.
func (s *Service) AddItem(ctx context.Context, sessionID string, in dto.AddCartItemRequest) (*dto.CartResponse, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !product.IsActive {
		return nil, domain.NewValidationError("productId", "producto inactivo")
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.AddItem(product, in.Quantity)
		return nil
	})
}

// UpdateQuantity cambia la cantidad de una línea (<= 0 la elimina; línea desconocida: sin cambios).
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineID string, qty int) (*dto.CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.UpdateQuantity(lineID, qty)
		return nil
	})
}

// RemoveItem elimina una línea.
func (s *Service) RemoveItem(ctx context.Context, sessionID, lineID string) (*dto.CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.RemoveItem(lineID)
		return nil
	})
}

// SetDiscount fija el descuento.
func (s *Service) SetDiscount(ctx context.Context, sessionID string, d decimal.Decimal) (*dto.CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.SetDiscount(d)
	})
}

// SetCustomer selecciona el cliente.
func (s *Service) SetCustomer(ctx context.Context, sessionID string, in dto.SetCustomerRequest) (*dto.CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.SetCustomer(in.CustomerID, in.CustomerName)
		return nil
	})
}

// Clear vacía el carrito de la sesión.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	unlock, err := s.locker.Lock(ctx, lockKey(sessionID))
	if err != nil {
		return err
	}
	defer s.release(unlock)
	return s.store.Delete(ctx, sessionID)
}

// Checkout ejecuta commit con el carrito de la sesión, manteniendo el lock durante todo el commit.
// Si commit tiene éxito el carrito se borra; si falla se conserva intacto.
func (s *Service) Checkout(ctx context.Context, sessionID string, commit func(c *Cart) error) error {
	unlock, err := s.locker.Lock(ctx, lockKey(sessionID))
	if err != nil {
		return err
	}
	defer s.release(unlock)

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if c.IsEmpty() {
		return domain.ErrEmptyCart
	}
	if err := commit(c); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		// la venta ya está confirmada; el carrito viejo se limpia con el TTL
		s.log.Warn().Err(err).Str("session", sessionID).Msg("no se pudo limpiar el carrito tras la venta")
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(c *Cart) error) (*dto.CartResponse, error) {
	unlock, err := s.locker.Lock(ctx, lockKey(sessionID))
	if err != nil {
		return nil, err
	}
	defer s.release(unlock)

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c.Snapshot()); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return ToResponse(c), nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*Cart, error) {
	snap, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if snap == nil {
		return New(sessionID), nil
	}
	return FromSnapshot(snap), nil
}

func (s *Service) release(unlock func(context.Context) error) {
	// ctx propio: el del request puede estar cancelado
	if err := unlock(context.Background()); err != nil {
		s.log.Warn().Err(err).Msg("liberar lock de carrito")
	}
}

func lockKey(sessionID string) string {
	return "cart-lock:" + sessionID
}

// ToResponse mapea el carrito al DTO.
func ToResponse(c *Cart) *dto.CartResponse {
	snap := c.Snapshot()
	resp := &dto.CartResponse{
		SessionID:    snap.SessionID,
		Items:        make([]dto.CartLineResponse, 0, len(snap.Lines)),
		CustomerID:   snap.CustomerID,
		CustomerName: snap.CustomerName,
		Subtotal:     c.Subtotal(),
		Discount:     snap.Discount,
		Total:        c.Total(),
	}
	for _, l := range snap.Lines {
		resp.Items = append(resp.Items, dto.CartLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
		resp.ItemCount += l.Quantity
	}
	return resp
}
