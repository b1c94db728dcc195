package repository

import (
	"context"
	"time"

	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleLineItem) error
	// GetByID devuelve la venta con sus líneas ordenadas por posición.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetByIDForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error)
	MarkVoided(ctx context.Context, id, voidedBy string, at time.Time) error
}
