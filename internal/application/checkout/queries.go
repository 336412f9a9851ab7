package checkout

import (
	"context"

	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/application/financial"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

// SaleQueryUseCase consultas de ventas confirmadas y de sus asientos.
type SaleQueryUseCase struct {
	saleRepo repository.SaleRepository
	movRepo  repository.InventoryMovementRepository
	finRepo  repository.FinancialTransactionRepository
}

// NewSaleQueryUseCase construye el caso de uso.
func NewSaleQueryUseCase(
	saleRepo repository.SaleRepository,
	movRepo repository.InventoryMovementRepository,
	finRepo repository.FinancialTransactionRepository,
) *SaleQueryUseCase {
	return &SaleQueryUseCase{saleRepo: saleRepo, movRepo: movRepo, finRepo: finRepo}
}

// GetSale obtiene una venta por ID.
func (uc *SaleQueryUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return ToSaleResponse(s), nil
}

// ListSales lista ventas por período, método de pago y cajero.
func (uc *SaleQueryUseCase) ListSales(ctx context.Context, in dto.SaleListRequest) (*dto.SaleListResponse, error) {
	in.DefaultPage()
	from, to, err := financial.ParseDateRange(in.From, in.To)
	if err != nil {
		return nil, err
	}
	list, err := uc.saleRepo.List(ctx, repository.SaleFilter{
		From: from, To: to,
		PaymentMethod: in.PaymentMethod,
		CashierID:     in.CashierID,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, *ToSaleResponse(s))
	}
	return out, nil
}

// Ledger devuelve movimientos e ingreso de una venta y verifica su consistencia:
// Σ movimientos = Σ ítems y un único ingreso por el total.
func (uc *SaleQueryUseCase) Ledger(ctx context.Context, saleID string) (*dto.SaleLedgerResponse, error) {
	s, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	fins, err := uc.finRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	out := &dto.SaleLedgerResponse{
		SaleID:       saleID,
		Movements:    make([]dto.MovementResponse, 0, len(movs)),
		Transactions: make([]dto.FinancialTransactionResponse, 0, len(fins)),
	}
	moved := 0
	for _, m := range movs {
		moved += m.Quantity
		out.Movements = append(out.Movements, toMovementResponse(m))
	}
	for _, f := range fins {
		out.Transactions = append(out.Transactions, financial.ToResponse(f))
	}
	out.Consistent = moved == s.ItemCount() &&
		len(fins) == 1 && fins[0].Amount.Equal(s.Total) && fins[0].Type == entity.FinancialTypeReceita
	return out, nil
}

// ToSaleResponse mapea la entidad al DTO.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		Items:         items,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		Notes:         s.Notes,
		CashierID:     s.CashierID,
		CreatedAt:     s.CreatedAt,
	}
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		RelatedSaleID: m.RelatedSaleID,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}
