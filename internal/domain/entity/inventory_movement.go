package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada = "entrada"
	MovementTypeSaida   = "saida"
	MovementTypeAjuste  = "ajuste"
)

// MovementReasonSale motivo registrado para las salidas generadas por una venta.
const MovementReasonSale = "Venda"

// InventoryMovement registro de auditoría de un cambio de stock.
// Quantity es siempre positiva; Type indica la dirección.
type InventoryMovement struct {
	ID            string
	ProductID     string
	ProductName   string
	Type          string
	Quantity      int
	Reason        string
	RelatedSaleID string
	CreatedAt     time.Time
	CreatedBy     string
}
