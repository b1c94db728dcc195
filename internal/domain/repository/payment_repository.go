package repository

import (
	"context"

	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para abonos de clientes.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*entity.Payment, error)
}
