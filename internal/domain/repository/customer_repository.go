package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer (usable con pool o tx).
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	// List con department vacío devuelve todos; si no, los del departamento y los que no tienen ninguno.
	// search filtra por nombre (sin distinguir mayúsculas).
	List(ctx context.Context, department, search string, limit, offset int) ([]*entity.Customer, error)
	// AdjustBalance suma delta al saldo de forma atómica y devuelve el saldo resultante.
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
}
