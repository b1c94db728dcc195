package repository

import (
	"context"
	"time"

	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// SessionStore puerto del almacén de sesiones en servidor.
// Get devuelve (nil, nil) si la sesión no existe. Delete es idempotente.
type SessionStore interface {
	Create(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
	// Touch extiende la expiración (expiración deslizante).
	Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error
	// DeleteByUser revoca todas las sesiones de un usuario.
	DeleteByUser(ctx context.Context, userID string) error
}
