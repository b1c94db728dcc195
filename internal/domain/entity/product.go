package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo vendible de un departamento.
// StockQuantity nunca queda negativo: el descuento se hace con UPDATE condicional.
type Product struct {
	ID               string
	SKU              string
	Name             string
	Department       string
	UnitPrice        decimal.Decimal
	StockQuantity    int
	ReorderThreshold int
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NeedsReorder indica si el stock está en o por debajo del umbral de reposición.
func (p *Product) NeedsReorder() bool {
	return p.StockQuantity <= p.ReorderThreshold
}
