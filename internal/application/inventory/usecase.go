package inventory

import (
	"context"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

// StockUseCase motor de salidas de stock. No abre transacciones: trabaja con los
// repositorios que le pasa el caller para compartir su unidad atómica.
type StockUseCase struct{}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase() *StockUseCase {
	return &StockUseCase{}
}

// RegisterSaleOutInTx descuenta movement.Quantity del producto (guarda stock >= cantidad)
// y persiste el movimiento "saida". Si retorna error el caller debe descartar la unidad.
func (uc *StockUseCase) RegisterSaleOutInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	movement *entity.InventoryMovement,
) error {
	if movement.Type != entity.MovementTypeSaida || movement.Quantity <= 0 {
		return domain.NewValidationError("movement", "se esperaba una salida con cantidad positiva")
	}
	if _, err := productRepo.DecrementStock(ctx, movement.ProductID, movement.Quantity); err != nil {
		return err
	}
	return movRepo.Create(ctx, movement)
}
