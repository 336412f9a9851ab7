package checkout

import (
	"context"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

// TxRunner ejecuta fn como una unidad atómica con repositorios atados a esa unidad.
// Si fn retorna error no queda ningún efecto. Los conflictos de concurrencia se
// reportan como domain.ErrConcurrencyConflict y las fallas transitorias como domain.ErrStoreUnavailable.
type TxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.InventoryMovementRepository,
		finRepo repository.FinancialTransactionRepository,
	) error) error
}

// StockOut integra el commit con inventario: descuenta stock y registra la salida
// usando los repositorios del caller (misma unidad atómica).
type StockOut interface {
	RegisterSaleOutInTx(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movRepo repository.InventoryMovementRepository,
		movement *entity.InventoryMovement,
	) error
}

// ReceiptPublisher recibe la venta confirmada para generar su comprobante.
// Sus errores no afectan a la venta.
type ReceiptPublisher interface {
	Publish(ctx context.Context, sale *entity.Sale) error
}

// NumberGenerator genera el número corto de recibo.
type NumberGenerator func() (string, error)
