// Package cart agrega las líneas de una venta en curso antes de confirmarla.
// No persiste nada por sí mismo: el Service guarda snapshots en un Store.
package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/sales"
	"github.com/jhoicas/pdv-api/pkg/money"
)

// Line línea del carrito. Total = round(Quantity × UnitPrice).
type Line struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Snapshot estado serializable de un carrito.
type Snapshot struct {
	SessionID    string          `json:"sessionId"`
	Lines        []Line          `json:"lines"`
	Discount     decimal.Decimal `json:"discount"`
	CustomerID   string          `json:"customerId,omitempty"`
	CustomerName string          `json:"customerName,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Cart carrito en memoria; las mutaciones se serializan con un mutex.
type Cart struct {
	mu           sync.Mutex
	sessionID    string
	lines        []Line
	discount     decimal.Decimal
	customerID   string
	customerName string
	newID        func() string
}

// New crea un carrito vacío.
func New(sessionID string) *Cart {
	return &Cart{sessionID: sessionID, newID: func() string { return uuid.New().String() }}
}

// FromSnapshot reconstruye un carrito persistido.
func FromSnapshot(s *Snapshot) *Cart {
	c := New(s.SessionID)
	c.lines = append([]Line(nil), s.Lines...)
	c.discount = s.Discount
	c.customerID = s.CustomerID
	c.customerName = s.CustomerName
	return c
}

// AddItem agrega qty unidades del producto y devuelve la línea resultante.
// Si ya hay una línea del producto suma la cantidad; qty <= 0 no cambia nada.
func (c *Cart) AddItem(p *entity.Product, qty int) Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			if qty > 0 {
				c.lines[i].Quantity += qty
				c.lines[i].Total = money.LineTotal(c.lines[i].Quantity, c.lines[i].UnitPrice)
			}
			return c.lines[i]
		}
	}
	if qty <= 0 {
		return Line{}
	}
	l := Line{
		ID:          c.newID(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   money.Round(p.Price),
		Total:       money.LineTotal(qty, p.Price),
	}
	c.lines = append(c.lines, l)
	return l
}

// UpdateQuantity fija la cantidad de una línea; qty <= 0 la elimina. Un id desconocido no hace nada.
func (c *Cart) UpdateQuantity(lineID string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ID != lineID {
			continue
		}
		if qty <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
		c.lines[i].Quantity = qty
		c.lines[i].Total = money.LineTotal(qty, c.lines[i].UnitPrice)
		return
	}
}

// RemoveItem elimina la línea; un id desconocido no hace nada.
func (c *Cart) RemoveItem(lineID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear vacía el carrito y resetea descuento y cliente.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.discount = decimal.Zero
	c.customerID = ""
	c.customerName = ""
}

// SetDiscount fija el descuento (no negativo). El tope contra el subtotal se aplica al confirmar.
func (c *Cart) SetDiscount(d decimal.Decimal) error {
	if d.IsNegative() {
		return domain.NewValidationError("discount", "no puede ser negativo")
	}
	c.mu.Lock()
	c.discount = money.Round(d)
	c.mu.Unlock()
	return nil
}

// SetCustomer selecciona el cliente; valores vacíos lo quitan.
func (c *Cart) SetCustomer(id, name string) {
	c.mu.Lock()
	c.customerID = id
	c.customerName = name
	c.mu.Unlock()
}

// Lines copia de las líneas actuales.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// IsEmpty indica si no hay líneas.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Subtotal Σ total de líneas.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal()
}

func (c *Cart) subtotal() decimal.Decimal {
	s := decimal.Zero
	for _, l := range c.lines {
		s = s.Add(l.Total)
	}
	return money.Round(s)
}

// Discount descuento actual.
func (c *Cart) Discount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discount
}

// Total subtotal - descuento.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal().Sub(c.discount)
}

// SaleLines convierte el carrito en líneas para el commit de ventas.
func (c *Cart) SaleLines() []sales.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sales.Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, sales.Line{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return out
}

// Snapshot devuelve el estado serializable del carrito.
func (c *Cart) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Snapshot{
		SessionID:    c.sessionID,
		Lines:        append([]Line(nil), c.lines...),
		Discount:     c.discount,
		CustomerID:   c.customerID,
		CustomerName: c.customerName,
		UpdatedAt:    time.Now().UTC(),
	}
}

// Customer devuelve id y nombre del cliente seleccionado.
func (c *Cart) Customer() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customerID, c.customerName
}
