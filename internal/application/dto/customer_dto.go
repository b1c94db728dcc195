package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=200"`
	ClassName   string `json:"className" validate:"omitempty,max=100"`
	Department  string `json:"department" validate:"omitempty,max=100"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	ClassName   string          `json:"className,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	Department  string          `json:"department,omitempty"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Success bool               `json:"success"`
	Items   []CustomerResponse `json:"items"`
	Page    PageResponse       `json:"page"`
}

// PaymentSummary abono en el detalle del cliente.
type PaymentSummary struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	ReceivedBy string          `json:"receivedBy"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// CustomerDetailResponse cliente con sus últimos abonos.
type CustomerDetailResponse struct {
	Success  bool             `json:"success"`
	Customer CustomerResponse `json:"customer"`
	Payments []PaymentSummary `json:"payments"`
}
