// Package memory implementa los puertos de persistencia en memoria.
// Las escrituras de RunCheckout se aplican todo-o-nada con validación optimista
// de versiones de producto; se usa como driver "memory" y como doble de tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
)

// Store documentos en memoria protegidos por un único RWMutex.
type Store struct {
	mu        sync.RWMutex
	products  map[string]*entity.Product
	skuIndex  map[string]string
	sales     map[string]*entity.Sale
	saleOrder []string
	movements []*entity.InventoryMovement
	financial []*entity.FinancialTransaction
	customers map[string]*entity.Customer
	users     map[string]*entity.User
	emails    map[string]string

	hookMu       sync.Mutex
	beforeCommit func()
	failures     []error
	lostAcks     []error
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		skuIndex:  make(map[string]string),
		sales:     make(map[string]*entity.Sale),
		customers: make(map[string]*entity.Customer),
		users:     make(map[string]*entity.User),
		emails:    make(map[string]string),
	}
}

// SeedProduct inserta o reemplaza un producto tal cual (tests y modo demo).
func (s *Store) SeedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	if cp.Version == 0 {
		cp.Version = 1
	}
	s.products[cp.ID] = &cp
	if cp.SKU != "" {
		s.skuIndex[cp.SKU] = cp.ID
	}
}

// SeedCustomer inserta un cliente.
func (s *Store) SeedCustomer(c *entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.customers[cp.ID] = &cp
}

// Product devuelve una copia del producto (nil si no existe).
func (s *Store) Product(id string) *entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// Counts cantidad de ventas, movimientos y asientos financieros almacenados.
func (s *Store) Counts() (sales, movements, financial int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales), len(s.movements), len(s.financial)
}

// SetBeforeCommit registra una función que corre entre el fin de las lecturas de
// RunCheckout y la validación de versiones. Permite forzar carreras en tests.
func (s *Store) SetBeforeCommit(fn func()) {
	s.hookMu.Lock()
	s.beforeCommit = fn
	s.hookMu.Unlock()
}

// FailNext hace que las próximas llamadas a RunCheckout fallen con los errores dados, en orden.
func (s *Store) FailNext(errs ...error) {
	s.hookMu.Lock()
	s.failures = append(s.failures, errs...)
	s.hookMu.Unlock()
}

func (s *Store) popFailure() error {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	if len(s.failures) == 0 {
		return nil
	}
	err := s.failures[0]
	s.failures = s.failures[1:]
	return err
}

// FailAfterCommit hace que los próximos RunCheckout apliquen sus cambios y aun así
// devuelvan el error dado, como un commit cuya confirmación se perdió en la red.
func (s *Store) FailAfterCommit(errs ...error) {
	s.hookMu.Lock()
	s.lostAcks = append(s.lostAcks, errs...)
	s.hookMu.Unlock()
}

func (s *Store) popLostAck() error {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	if len(s.lostAcks) == 0 {
		return nil
	}
	err := s.lostAcks[0]
	s.lostAcks = s.lostAcks[1:]
	return err
}

func (s *Store) hook() func() {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	return s.beforeCommit
}

func copySale(in *entity.Sale) *entity.Sale {
	cp := *in
	cp.Items = append([]entity.SaleItem(nil), in.Items...)
	return &cp
}

func matchProduct(p *entity.Product, f repository.ProductFilter) bool {
	if f.OnlyActive && !p.IsActive {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.SKU), q) &&
			p.Barcode != f.Search {
			return false
		}
	}
	return true
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortProducts(list []*entity.Product) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
}
