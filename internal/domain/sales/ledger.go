package sales

import (
	"time"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
)

// Entries construye los asientos que acompañan a una venta confirmada:
// un movimiento "saida" por ítem y exactamente un ingreso "receita" por el total.
func Entries(sale *entity.Sale, now time.Time, newID func() string) ([]*entity.InventoryMovement, *entity.FinancialTransaction) {
	movements := make([]*entity.InventoryMovement, 0, len(sale.Items))
	for _, it := range sale.Items {
		movements = append(movements, &entity.InventoryMovement{
			ID:            newID(),
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Type:          entity.MovementTypeSaida,
			Quantity:      it.Quantity,
			Reason:        entity.MovementReasonSale,
			RelatedSaleID: sale.ID,
			CreatedAt:     now,
			CreatedBy:     sale.CashierID,
		})
	}

	fin := &entity.FinancialTransaction{
		ID:            newID(),
		Type:          entity.FinancialTypeReceita,
		Category:      entity.FinancialCategorySales,
		Description:   "Venda #" + sale.Number,
		Amount:        sale.Total,
		Date:          now,
		PaymentMethod: sale.PaymentMethod,
		Status:        entity.FinancialStatusPago,
		RelatedSaleID: sale.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     sale.CashierID,
	}
	return movements, fin
}
