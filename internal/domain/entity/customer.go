package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente (estudiante) con saldo pendiente.
// Balance positivo = deuda. Solo lo modifican ventas a cuenta, pagos y anulaciones.
type Customer struct {
	ID          string
	DisplayName string
	ClassName   string // curso / cohorte
	Balance     decimal.Decimal
	Department  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
