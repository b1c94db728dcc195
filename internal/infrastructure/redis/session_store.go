package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

const (
	sessionPrefix   = "session:"
	userIndexPrefix = "session:user:"
)

// SessionStore guarda cada sesión como JSON con TTL igual a su expiración.
// session:user:<id> es un SET con los ids de sesión del usuario (para revocarlas juntas).
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionStore construye el almacén.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func sessionKey(id string) string { return sessionPrefix + id }
func userIndexKey(userID string) string { return userIndexPrefix + userID }

// Create guarda la sesión y la indexa por usuario.
func (s *SessionStore) Create(ctx context.Context, session *entity.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	ttl := s.ttl(session.ExpiresAt)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKey(session.ID), payload, ttl)
		p.SAdd(ctx, userIndexKey(session.UserID), session.ID)
		p.Expire(ctx, userIndexKey(session.UserID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	return nil
}

// Get devuelve la sesión o nil si no existe o Redis ya la expiró.
func (s *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	var session entity.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("deserializar sesión: %w", err)
	}
	return &session, nil
}

// Delete elimina la sesión y su entrada en el índice. Idempotente.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKey(id))
		if session != nil {
			p.SRem(ctx, userIndexKey(session.UserID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("eliminar sesión: %w", err)
	}
	return nil
}

// Touch reescribe actividad y expiración. Una sesión que ya no existe se ignora.
func (s *SessionStore) Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error {
	session, err := s.Get(ctx, id)
	if err != nil || session == nil {
		return err
	}
	session.LastSeenAt = lastSeen
	session.ExpiresAt = expiresAt
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	ttl := s.ttl(expiresAt)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKey(id), payload, ttl)
		p.Expire(ctx, userIndexKey(session.UserID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("extender sesión: %w", err)
	}
	return nil
}

// DeleteByUser elimina todas las sesiones del usuario.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("listar sesiones del usuario: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userIndexKey(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("eliminar sesiones del usuario: %w", err)
	}
	return nil
}

// ttl nunca es cero: Redis interpretaría 0 como "sin expiración".
func (s *SessionStore) ttl(expiresAt time.Time) time.Duration {
	ttl := expiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
