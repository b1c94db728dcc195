package entity

import "time"

// Session registro de sesión en servidor. Copia rol y departamento del usuario al iniciar sesión:
// un cambio de rol no se refleja hasta el siguiente login, salvo que se revoquen sus sesiones.
type Session struct {
	ID          string
	UserID      string
	Username    string
	Role        string
	Department  string
	DisplayName string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	LastSeenAt  time.Time
}

// Expired indica si la sesión ya no es válida en el instante now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity contexto de identidad resuelto por request. Se pasa explícitamente a los casos de uso.
type Identity struct {
	SessionID   string
	UserID      string
	Username    string
	Role        string
	Department  string
	DisplayName string
	ExpiresAt   time.Time
}

// IdentityFromSession construye la identidad a partir del registro de sesión.
func IdentityFromSession(s *Session) *Identity {
	return &Identity{
		SessionID:   s.ID,
		UserID:      s.UserID,
		Username:    s.Username,
		Role:        s.Role,
		Department:  s.Department,
		DisplayName: s.DisplayName,
		ExpiresAt:   s.ExpiresAt,
	}
}
