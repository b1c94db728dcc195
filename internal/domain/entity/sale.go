package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusVoided    = "voided"
)

// Medios de pago. PaymentAccount es venta a crédito: aumenta el saldo del cliente.
const (
	PaymentCash    = "cash"
	PaymentCard    = "card"
	PaymentAccount = "account"
)

// ValidPaymentMethod informa si el medio de pago es conocido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentAccount:
		return true
	default:
		return false
	}
}

// Sale cabecera de venta. Es dueña exclusiva de sus Items.
type Sale struct {
	ID             string
	CustomerID     string // vacío = venta de mostrador
	CashierID      string
	CashierName    string // snapshot para el recibo
	Department     string
	TotalAmount    decimal.Decimal
	PaymentMethod  string
	Status         string
	IdempotencyKey string
	CreatedAt      time.Time
	VoidedAt       *time.Time
	VoidedBy       string
	Items          []*SaleLineItem
}

// SaleLineItem línea inmutable con el precio congelado al momento de la venta.
type SaleLineItem struct {
	ID          string
	SaleID      string
	Position    int
	ProductID   string
	SKU         string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}
