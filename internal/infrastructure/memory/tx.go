package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/application/checkout"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

var _ checkout.TxRunner = (*TxRunner)(nil)

// TxRunner transacción simulada: lecturas registran la versión del producto, escrituras
// quedan en buffer y el commit valida todas las versiones leídas bajo el lock del Store.
// Si alguna cambió, nada se aplica y se devuelve domain.ErrConcurrencyConflict.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunCheckout ejecuta fn con repositorios atados a una transacción simulada.
func (r *TxRunner) RunCheckout(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	movRepo repository.InventoryMovementRepository,
	finRepo repository.FinancialTransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := r.s.popFailure(); err != nil {
		return err
	}

	t := &tx{s: r.s, read: make(map[string]int64), working: make(map[string]*entity.Product)}
	if err := fn(&txProductRepo{t}, &txSaleRepo{t}, &txMovementRepo{t}, &txFinancialRepo{t}); err != nil {
		return err
	}
	if hook := r.s.hook(); hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := t.commit(); err != nil {
		return err
	}
	return r.s.popLostAck()
}

type tx struct {
	s         *Store
	read      map[string]int64
	working   map[string]*entity.Product
	sales     []*entity.Sale
	movements []*entity.InventoryMovement
	financial []*entity.FinancialTransaction
}

// product devuelve la copia de trabajo del producto, leyéndola y registrando su versión la primera vez.
func (t *tx) product(id string) *entity.Product {
	if p, ok := t.working[id]; ok {
		return p
	}
	t.s.mu.RLock()
	cur, ok := t.s.products[id]
	var cp entity.Product
	if ok {
		cp = *cur
	}
	t.s.mu.RUnlock()
	if !ok {
		t.read[id] = 0
		return nil
	}
	t.read[id] = cp.Version
	t.working[id] = &cp
	return &cp
}

func (t *tx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id, v := range t.read {
		cur, ok := t.s.products[id]
		switch {
		case !ok && v != 0, ok && cur.Version != v:
			return fmt.Errorf("%w: producto %s modificado por otra transacción", domain.ErrConcurrencyConflict, id)
		}
	}
	for _, sale := range t.sales {
		if _, ok := t.s.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
	}

	for id, p := range t.working {
		cur := t.s.products[id]
		if cur.Stock != p.Stock {
			cur.Stock = p.Stock
			cur.Version++
		}
	}
	for _, sale := range t.sales {
		t.s.sales[sale.ID] = sale
		t.s.saleOrder = append(t.s.saleOrder, sale.ID)
	}
	t.s.movements = append(t.s.movements, t.movements...)
	t.s.financial = append(t.s.financial, t.financial...)
	return nil
}

type txProductRepo struct{ t *tx }

func (r *txProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p := r.t.product(id)
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *txProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *txProductRepo) DecrementStock(_ context.Context, id string, qty int) (int, error) {
	p := r.t.product(id)
	if p == nil {
		return 0, domain.ErrNotFound
	}
	if p.Stock < qty {
		return p.Stock, &domain.InsufficientStockError{ProductID: id, Available: p.Stock, Requested: qty}
	}
	p.Stock -= qty
	return p.Stock, nil
}

func (r *txProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	return NewProductRepository(r.t.s).List(ctx, f)
}

func (r *txProductRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	return NewProductRepository(r.t.s).ListLowStock(ctx, limit)
}

func (r *txProductRepo) Upsert(context.Context, *entity.Product) error {
	return fmt.Errorf("memory: upsert de producto no soportado dentro de checkout")
}

type txSaleRepo struct{ t *tx }

func (r *txSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.t.sales = append(r.t.sales, copySale(sale))
	return nil
}

func (r *txSaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	for _, s := range r.t.sales {
		if s.ID == id {
			return copySale(s), nil
		}
	}
	return NewSaleRepository(r.t.s).GetByID(ctx, id)
}

func (r *txSaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	return NewSaleRepository(r.t.s).List(ctx, f)
}

type txMovementRepo struct{ t *tx }

func (r *txMovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	cp := *m
	r.t.movements = append(r.t.movements, &cp)
	return nil
}

func (r *txMovementRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.InventoryMovement, error) {
	return NewMovementRepository(r.t.s).ListBySale(ctx, saleID)
}

type txFinancialRepo struct{ t *tx }

func (r *txFinancialRepo) Create(_ context.Context, f *entity.FinancialTransaction) error {
	cp := *f
	r.t.financial = append(r.t.financial, &cp)
	return nil
}

func (r *txFinancialRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.FinancialTransaction, error) {
	return NewFinancialRepository(r.t.s).ListBySale(ctx, saleID)
}

func (r *txFinancialRepo) List(ctx context.Context, f repository.FinancialFilter) ([]*entity.FinancialTransaction, error) {
	return NewFinancialRepository(r.t.s).List(ctx, f)
}

func (r *txFinancialRepo) Totals(ctx context.Context, f repository.FinancialFilter) (map[string]decimal.Decimal, error) {
	return NewFinancialRepository(r.t.s).Totals(ctx, f)
}
