package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo del PDV.
// Stock es un entero no negativo; en el flujo de venta solo lo decrementa el commit de ventas.
// Version se incrementa con cada escritura y sirve para control optimista en el almacén en memoria.
type Product struct {
	ID          string
	Name        string
	Description string
	Barcode     string
	SKU         string
	Category    string
	Price       decimal.Decimal // precio de venta
	CostPrice   decimal.Decimal
	Stock       int
	MinStock    int
	Unit        string // un, kg, cx...
	IsActive    bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
}

// IsLowStock indica si el stock llegó al mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}
