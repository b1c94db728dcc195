package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (usable con pool o tx).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByDepartment(ctx context.Context, department string, onlyActive bool, limit, offset int) ([]*entity.Product, error)
	// ListBelowReorder productos activos con stock_quantity <= reorder_threshold, ordenados por faltante.
	ListBelowReorder(ctx context.Context, department string) ([]*entity.Product, error)
	// DecrementStock descuenta quantity solo si hay stock suficiente, en una sola sentencia.
	// ok=false si el producto no tenía stock suficiente; unitPrice es el precio de la fila bloqueada.
	DecrementStock(ctx context.Context, id string, quantity int) (unitPrice decimal.Decimal, ok bool, err error)
	// AdjustStock suma delta (puede ser negativo) sin permitir stock negativo.
	AdjustStock(ctx context.Context, id string, delta int) (newQuantity int, ok bool, err error)
}
