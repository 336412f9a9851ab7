package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

var _ repository.FinancialTransactionRepository = (*FinancialRepo)(nil)

const financialColumns = `id, type, category, description, amount, date, payment_method, status, related_sale_id, created_at, updated_at, created_by`

// FinancialRepo libro financiero sobre PostgreSQL (usable con pool o tx).
type FinancialRepo struct {
	q Querier
}

// NewFinancialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFinancialRepository(q Querier) *FinancialRepo {
	return &FinancialRepo{q: q}
}

// Create persiste un asiento.
func (r *FinancialRepo) Create(ctx context.Context, t *entity.FinancialTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO financial_transactions (`+financialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Type, t.Category, t.Description, t.Amount, t.Date, nullIfEmpty(t.PaymentMethod),
		t.Status, nullIfEmpty(t.RelatedSaleID), t.CreatedAt, t.UpdatedAt, nullIfEmpty(t.CreatedBy),
	)
	if err != nil {
		return classify("create financial transaction", err)
	}
	return nil
}

// ListBySale asientos de una venta.
func (r *FinancialRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.FinancialTransaction, error) {
	return r.query(ctx, psql.Select(financialColumns).From("financial_transactions").
		Where(squirrel.Eq{"related_sale_id": saleID}).OrderBy("created_at"))
}

// List asientos más recientes primero.
func (r *FinancialRepo) List(ctx context.Context, f repository.FinancialFilter) ([]*entity.FinancialTransaction, error) {
	qb := financialWhere(psql.Select(financialColumns).From("financial_transactions"), f).
		OrderBy("date DESC", "id DESC")
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	return r.query(ctx, qb)
}

// Totals suma amount por tipo sobre todo el filtro.
func (r *FinancialRepo) Totals(ctx context.Context, f repository.FinancialFilter) (map[string]decimal.Decimal, error) {
	sql, args, err := financialWhere(
		psql.Select("type", "COALESCE(SUM(amount), 0)").From("financial_transactions"), f,
	).GroupBy("type").ToSql()
	if err != nil {
		return nil, fmt.Errorf("financial totals: build: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify("financial totals", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal, 2)
	for rows.Next() {
		var typ string
		var sum decimal.Decimal
		if err := rows.Scan(&typ, &sum); err != nil {
			return nil, fmt.Errorf("scan financial totals: %w", err)
		}
		out[typ] = sum
	}
	return out, rows.Err()
}

func financialWhere(qb squirrel.SelectBuilder, f repository.FinancialFilter) squirrel.SelectBuilder {
	if f.Type != "" {
		qb = qb.Where(squirrel.Eq{"type": f.Type})
	}
	if f.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": f.Status})
	}
	if f.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"date": *f.To})
	}
	return qb
}

func (r *FinancialRepo) query(ctx context.Context, qb squirrel.SelectBuilder) ([]*entity.FinancialTransaction, error) {
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("list financial: build: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify("list financial", err)
	}
	defer rows.Close()
	list := make([]*entity.FinancialTransaction, 0)
	for rows.Next() {
		t, err := scanFinancial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan financial transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanFinancial(row pgx.Row) (*entity.FinancialTransaction, error) {
	var t entity.FinancialTransaction
	var pm, related, createdBy *string
	if err := row.Scan(&t.ID, &t.Type, &t.Category, &t.Description, &t.Amount, &t.Date, &pm,
		&t.Status, &related, &t.CreatedAt, &t.UpdatedAt, &createdBy); err != nil {
		return nil, err
	}
	t.PaymentMethod = fromNull(pm)
	t.RelatedSaleID = fromNull(related)
	t.CreatedBy = fromNull(createdBy)
	return &t, nil
}
