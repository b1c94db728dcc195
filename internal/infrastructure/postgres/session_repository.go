package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
)

var _ repository.SessionStore = (*SessionRepo)(nil)

// SessionRepo almacén de sesiones en la tabla sessions (alternativa a Redis).
// Las filas expiradas no se devuelven; PurgeExpired las elimina.
type SessionRepo struct {
	q Querier
}

// NewSessionRepository construye el almacén de sesiones sobre PostgreSQL.
func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

// Create guarda la sesión.
func (r *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, username, role, department, display_name, created_at, expires_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.UserID, s.Username, s.Role, s.Department, s.DisplayName, s.CreatedAt, s.ExpiresAt, s.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get devuelve la sesión o nil si no existe. La expiración la decide quien llama.
func (r *SessionRepo) Get(ctx context.Context, id string) (*entity.Session, error) {
	query := `
		SELECT id, user_id, username, role, department, display_name, created_at, expires_at, last_seen_at
		FROM sessions WHERE id = $1`
	var s entity.Session
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Username, &s.Role, &s.Department, &s.DisplayName, &s.CreatedAt, &s.ExpiresAt, &s.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Delete elimina la sesión. Borrar una inexistente no es error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Touch actualiza actividad y expiración (sesiones deslizantes).
func (r *SessionRepo) Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sessions SET last_seen_at = $2, expires_at = $3 WHERE id = $1`,
		id, lastSeen, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// DeleteByUser elimina todas las sesiones del usuario.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// PurgeExpired elimina sesiones vencidas y devuelve cuántas borró.
func (r *SessionRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
