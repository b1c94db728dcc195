package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment abono de un cliente a su saldo pendiente.
type Payment struct {
	ID         string
	CustomerID string
	Amount     decimal.Decimal
	Method     string
	ReceivedBy string
	Note       string
	CreatedAt  time.Time
}
