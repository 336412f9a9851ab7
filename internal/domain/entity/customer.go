package entity

import "time"

// Customer representa un cliente (opcional en la venta).
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Document  string // CPF/CNPJ
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
