// Package financial libro de ingresos (receita) y egresos (despesa) de la tienda.
// Los ingresos de venta los escribe el commit de checkout; aquí se registran los asientos manuales.
package financial

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
	"github.com/jhoicas/pdv-api/pkg/logger"
	"github.com/jhoicas/pdv-api/pkg/money"
)

const dateLayout = "2006-01-02"

// LedgerUseCase consulta y asientos manuales del libro financiero.
type LedgerUseCase struct {
	repo repository.FinancialTransactionRepository
	now  func() time.Time
	log  *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(repo repository.FinancialTransactionRepository, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{repo: repo, now: time.Now, log: log.Component("financial")}
}

// List devuelve una página del libro. Los totales por tipo cubren todo el filtro, no solo la página.
func (uc *LedgerUseCase) List(ctx context.Context, in dto.FinancialListRequest) (*dto.FinancialListResponse, error) {
	in.DefaultPage()
	from, to, err := ParseDateRange(in.From, in.To)
	if err != nil {
		return nil, err
	}
	f := repository.FinancialFilter{
		Type: in.Type, Status: in.Status, From: from, To: to,
		Limit: in.Limit, Offset: in.Offset,
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	totals, err := uc.repo.Totals(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.FinancialListResponse{
		Items:        make([]dto.FinancialTransactionResponse, 0, len(list)),
		TotalReceita: money.Round(totals[entity.FinancialTypeReceita]),
		TotalDespesa: money.Round(totals[entity.FinancialTypeDespesa]),
		Page:         dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, ToResponse(t))
	}
	return out, nil
}

// Record registra un asiento manual (receita o despesa) a nombre de userID.
// Sin status queda "pago"; sin fecha, la actual.
func (uc *LedgerUseCase) Record(ctx context.Context, userID string, in dto.CreateFinancialRequest) (*dto.FinancialTransactionResponse, error) {
	amount := money.Round(in.Amount)
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "debe ser mayor que cero")
	}
	now := uc.now().UTC()
	date := now
	if in.Date != "" {
		d, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			return nil, domain.NewValidationError("date", "formato esperado YYYY-MM-DD")
		}
		date = d
	}
	status := in.Status
	if status == "" {
		status = entity.FinancialStatusPago
	}
	t := &entity.FinancialTransaction{
		ID:            uuid.New().String(),
		Type:          in.Type,
		Category:      in.Category,
		Description:   in.Description,
		Amount:        amount,
		Date:          date,
		PaymentMethod: in.PaymentMethod,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     userID,
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		uc.log.Warn().Err(err).Str("type", t.Type).Msg("FINANCIAL_TRANSACTION_CREATE_FAILED")
		return nil, err
	}
	uc.log.Info().
		Str("transaction_id", t.ID).
		Str("type", t.Type).
		Str("amount", amount.StringFixed(2)).
		Str("user", userID).
		Msg("FINANCIAL_TRANSACTION_CREATED")
	out := ToResponse(t)
	return &out, nil
}

// ParseDateRange interpreta from/to (2006-01-02); to es inclusivo hasta el fin del día.
func ParseDateRange(fromS, toS string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromS != "" {
		t, err := time.Parse(dateLayout, fromS)
		if err != nil {
			return nil, nil, domain.NewValidationError("from", "formato esperado YYYY-MM-DD")
		}
		from = &t
	}
	if toS != "" {
		t, err := time.Parse(dateLayout, toS)
		if err != nil {
			return nil, nil, domain.NewValidationError("to", "formato esperado YYYY-MM-DD")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.NewValidationError("to", fmt.Sprintf("anterior a from (%s)", fromS))
	}
	return from, to, nil
}

// ToResponse mapea un asiento al DTO.
func ToResponse(t *entity.FinancialTransaction) dto.FinancialTransactionResponse {
	return dto.FinancialTransactionResponse{
		ID:            t.ID,
		Type:          t.Type,
		Category:      t.Category,
		Description:   t.Description,
		Amount:        t.Amount,
		Date:          t.Date,
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		RelatedSaleID: t.RelatedSaleID,
		CreatedBy:     t.CreatedBy,
	}
}
