package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository              = (*ProductRepo)(nil)
	_ repository.SaleRepository                 = (*SaleRepo)(nil)
	_ repository.InventoryMovementRepository    = (*MovementRepo)(nil)
	_ repository.FinancialTransactionRepository = (*FinancialRepo)(nil)
	_ repository.CustomerRepository             = (*CustomerRepo)(nil)
	_ repository.UserRepository                 = (*UserRepo)(nil)
)

// ProductRepo acceso directo (fuera de RunCheckout) a productos.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el repositorio.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

// GetByID devuelve una copia del producto o nil.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.s.Product(id), nil
}

// GetForUpdate fuera de una transacción equivale a GetByID.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// DecrementStock descuenta de forma atómica con guarda stock >= qty.
func (r *ProductRepo) DecrementStock(_ context.Context, id string, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Stock < qty {
		return p.Stock, &domain.InsufficientStockError{ProductID: id, Available: p.Stock, Requested: qty}
	}
	p.Stock -= qty
	p.Version++
	return p.Stock, nil
}

// List filtra, ordena por nombre y pagina.
func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if matchProduct(p, f) {
			cp := *p
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sortProducts(out)
	return page(out, f.Limit, f.Offset), nil
}

// ListLowStock productos activos con stock <= minStock, los más críticos primero.
func (r *ProductRepo) ListLowStock(_ context.Context, limit int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if p.IsActive && p.IsLowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock == out[j].Stock {
			return out[i].Name < out[j].Name
		}
		return out[i].Stock < out[j].Stock
	})
	return page(out, limit, 0), nil
}

// Upsert inserta o actualiza por SKU conservando ID y CreatedAt del existente.
func (r *ProductRepo) Upsert(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.skuIndex[p.SKU]; ok {
		cur := r.s.products[id]
		p.ID = cur.ID
		p.CreatedAt = cur.CreatedAt
		p.Version = cur.Version + 1
	} else {
		p.Version = 1
	}
	cp := *p
	r.s.products[cp.ID] = &cp
	r.s.skuIndex[cp.SKU] = cp.ID
	return nil
}

// SaleRepo acceso directo a ventas.
type SaleRepo struct{ s *Store }

// NewSaleRepository construye el repositorio.
func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{s: s} }

// Create persiste una venta fuera de una transacción.
func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.sales[sale.ID] = copySale(sale)
	r.s.saleOrder = append(r.s.saleOrder, sale.ID)
	return nil
}

// GetByID devuelve una copia de la venta o nil.
func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return copySale(s), nil
}

// List ventas más recientes primero.
func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	out := make([]*entity.Sale, 0)
	for i := len(r.s.saleOrder) - 1; i >= 0; i-- {
		s := r.s.sales[r.s.saleOrder[i]]
		if f.From != nil && s.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && s.CreatedAt.After(*f.To) {
			continue
		}
		if f.PaymentMethod != "" && s.PaymentMethod != f.PaymentMethod {
			continue
		}
		if f.CashierID != "" && s.CashierID != f.CashierID {
			continue
		}
		out = append(out, copySale(s))
	}
	r.s.mu.RUnlock()
	return page(out, f.Limit, f.Offset), nil
}

// MovementRepo acceso directo a movimientos.
type MovementRepo struct{ s *Store }

// NewMovementRepository construye el repositorio.
func NewMovementRepository(s *Store) *MovementRepo { return &MovementRepo{s: s} }

// Create agrega un movimiento.
func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

// ListBySale movimientos de una venta en orden de creación.
func (r *MovementRepo) ListBySale(_ context.Context, saleID string) ([]*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.InventoryMovement, 0)
	for _, m := range r.s.movements {
		if m.RelatedSaleID == saleID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// FinancialRepo acceso directo al libro financiero.
type FinancialRepo struct{ s *Store }

// NewFinancialRepository construye el repositorio.
func NewFinancialRepository(s *Store) *FinancialRepo { return &FinancialRepo{s: s} }

// Create agrega un asiento.
func (r *FinancialRepo) Create(_ context.Context, t *entity.FinancialTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.financial = append(r.s.financial, &cp)
	return nil
}

// ListBySale asientos de una venta.
func (r *FinancialRepo) ListBySale(_ context.Context, saleID string) ([]*entity.FinancialTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.FinancialTransaction, 0)
	for _, t := range r.s.financial {
		if t.RelatedSaleID == saleID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// List asientos más recientes primero.
func (r *FinancialRepo) List(_ context.Context, f repository.FinancialFilter) ([]*entity.FinancialTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.FinancialTransaction, 0)
	for i := len(r.s.financial) - 1; i >= 0; i-- {
		if t := r.s.financial[i]; matchFinancial(t, f) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return page(out, f.Limit, f.Offset), nil
}

// Totals suma amount por tipo sobre todo el filtro, antes de paginar.
func (r *FinancialRepo) Totals(_ context.Context, f repository.FinancialFilter) (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]decimal.Decimal, 2)
	for _, t := range r.s.financial {
		if matchFinancial(t, f) {
			out[t.Type] = out[t.Type].Add(t.Amount)
		}
	}
	return out, nil
}

func matchFinancial(t *entity.FinancialTransaction, f repository.FinancialFilter) bool {
	switch {
	case f.Type != "" && t.Type != f.Type,
		f.Status != "" && t.Status != f.Status,
		f.From != nil && t.Date.Before(*f.From),
		f.To != nil && t.Date.After(*f.To):
		return false
	}
	return true
}

// CustomerRepo lectura de clientes.
type CustomerRepo struct{ s *Store }

// NewCustomerRepository construye el repositorio.
func NewCustomerRepository(s *Store) *CustomerRepo { return &CustomerRepo{s: s} }

// GetByID devuelve el cliente o nil.
func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// UserRepo usuarios por id y email.
type UserRepo struct{ s *Store }

// NewUserRepository construye el repositorio.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s: s} }

// GetByID devuelve el usuario o nil.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// FindByEmail devuelve el usuario o nil.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, nil
	}
	cp := *r.s.users[id]
	return &cp, nil
}

// Create persiste un usuario; email duplicado devuelve domain.ErrDuplicate.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emails[u.Email]; ok {
		return domain.ErrDuplicate
	}
	cp := *u
	r.s.users[cp.ID] = &cp
	r.s.emails[cp.Email] = cp.ID
	return nil
}
