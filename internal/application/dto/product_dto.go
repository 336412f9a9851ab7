package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductListRequest filtros del listado de productos para la grilla del PDV.
type ProductListRequest struct {
	PageRequest
	Search   string `query:"search" validate:"omitempty,max=100"`
	Category string `query:"category" validate:"omitempty,max=100"`
	All      bool   `query:"all"` // incluye inactivos
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"minStock"`
	Unit        string          `json:"unit"`
	IsActive    bool            `json:"isActive"`
	LowStock    bool            `json:"lowStock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
