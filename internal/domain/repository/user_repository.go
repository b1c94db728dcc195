package repository

import (
	"context"

	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (almacén de credenciales).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByUsername busca por coincidencia exacta (sensible a mayúsculas).
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdateRole(ctx context.Context, id, role, department string) error
}
