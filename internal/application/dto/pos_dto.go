package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest body de POST /api/pos/checkout. Solo el departamento se valida al enlazar:
// líneas, medio de pago y cliente los valida el caso de uso después de autorizar.
type CheckoutRequest struct {
	CustomerID    string                `json:"customerId"`
	Department    string                `json:"department" validate:"required,max=100"`
	Lines         []CheckoutLineRequest `json:"lines"`
	PaymentMethod string                `json:"paymentMethod"`
}

// CheckoutLineRequest línea del carrito. La validación de cantidad la hace el caso de uso
// para responder InvalidLineItem en lugar de un error genérico.
type CheckoutLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutResponse respuesta de una venta exitosa.
type CheckoutResponse struct {
	Success     bool            `json:"success"`
	SaleID      string          `json:"saleId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Replayed    bool            `json:"replayed,omitempty"`
	Receipt     Receipt         `json:"receipt"`
}

// Receipt resumen listo para imprimir (la impresión la hace el cliente).
type Receipt struct {
	SaleID         string          `json:"saleId"`
	Status         string          `json:"status"`
	CustomerName   string          `json:"customerName,omitempty"`
	Cashier        string          `json:"cashier"`
	Department     string          `json:"department"`
	PaymentMethod  string          `json:"paymentMethod"`
	Lines          []ReceiptLine   `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formattedTotal"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ReceiptLine línea del recibo con el precio congelado.
type ReceiptLine struct {
	ProductID string          `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// SaleResponse respuesta de GET /api/pos/sales/:id y de la anulación.
type SaleResponse struct {
	Success bool    `json:"success"`
	Receipt Receipt `json:"receipt"`
}

// PaymentRequest body de POST /api/pos/payments.
type PaymentRequest struct {
	CustomerID string          `json:"customerId" validate:"required,max=64"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method" validate:"required,oneof=cash card"`
	Note       string          `json:"note" validate:"omitempty,max=500"`
}

// PaymentResponse respuesta de un abono registrado.
type PaymentResponse struct {
	Success    bool            `json:"success"`
	PaymentID  string          `json:"paymentId"`
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
}
