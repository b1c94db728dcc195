package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// Locals keys de la identidad en Fiber.
const (
	LocalIdentity = "identity"
	localResolved = "session_resolved"
)

// sessionResolver es el contrato mínimo que necesita el middleware. Lo implementa *auth.AuthUseCase.
type sessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*entity.Identity, error)
	Sliding() bool
}

// SessionMiddleware resuelve la cookie de sesión a una identidad por request.
type SessionMiddleware struct {
	resolver sessionResolver
	cookie   SessionCookie
	errs     errorMapper
}

// NewSessionMiddleware construye el middleware de sesión.
func NewSessionMiddleware(resolver sessionResolver, cookie SessionCookie, log *logger.Logger) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver, cookie: cookie, errs: newErrorMapper(log)}
}

// attach resuelve la sesión una sola vez por request y deja la identidad en Locals.
func (m *SessionMiddleware) attach(c *fiber.Ctx) (*entity.Identity, error) {
	if c.Locals(localResolved) != nil {
		return GetIdentity(c), nil
	}
	sid := m.cookie.Read(c)
	identity, err := m.resolver.Resolve(c.UserContext(), sid)
	if err != nil {
		return nil, err
	}
	c.Locals(localResolved, true)
	if identity == nil {
		return nil, nil
	}
	c.Locals(LocalIdentity, identity)
	if m.resolver.Sliding() {
		// la expiración se movió: la cookie debe acompañarla
		if err := m.cookie.Issue(c, identity.SessionID, identity.UserID, identity.ExpiresAt); err != nil {
			return nil, err
		}
	}
	return identity, nil
}

// Resolve adjunta la identidad si la cookie corresponde a una sesión vigente. Nunca rechaza
// por falta de sesión; un fallo del almacén sí corta el request con 500.
func (m *SessionMiddleware) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := m.attach(c); err != nil {
			return m.errs.write(c, err)
		}
		return c.Next()
	}
}

// RequireAPI exige sesión en rutas de API: sin sesión responde 401 JSON.
func (m *SessionMiddleware) RequireAPI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := m.attach(c)
		if err != nil {
			return m.errs.write(c, err)
		}
		if identity == nil {
			return m.errs.write(c, domain.ErrUnauthenticated)
		}
		return c.Next()
	}
}

// RequirePage exige sesión en páginas: sin sesión redirige a loginPath.
func (m *SessionMiddleware) RequirePage(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := m.attach(c)
		if err != nil {
			return m.errs.write(c, err)
		}
		if identity == nil {
			return c.Redirect(loginPath, fiber.StatusFound)
		}
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del request (nil si es anónimo).
func GetIdentity(c *fiber.Ctx) *entity.Identity {
	v, _ := c.Locals(LocalIdentity).(*entity.Identity)
	return v
}

// GetUserID devuelve el id del usuario autenticado o "".
func GetUserID(c *fiber.Ctx) string {
	if identity := GetIdentity(c); identity != nil {
		return identity.UserID
	}
	return ""
}
