package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/pkg/jwt"
)

// SessionCookie emite y lee la cookie de sesión. El valor es un token HS256 que envuelve el id
// opaco de la sesión; la sesión del almacén sigue siendo la fuente de verdad.
type SessionCookie struct {
	Name     string
	Secret   string
	Issuer   string
	Secure   bool
	SameSite string // Strict | Lax
}

func (sc SessionCookie) name() string {
	if sc.Name == "" {
		return "sid"
	}
	return sc.Name
}

// Issue escribe la cookie HTTP-only con la expiración de la sesión.
func (sc SessionCookie) Issue(c *fiber.Ctx, sessionID, userID string, expiresAt time.Time) error {
	token, err := jwt.SignSession(sc.Secret, sessionID, userID, sc.Issuer, expiresAt)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sc.name(),
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   sc.Secure,
		SameSite: sc.sameSite(),
	})
	return nil
}

// Read devuelve el id de sesión de la cookie, o "" si no hay cookie o el token no es válido.
func (sc SessionCookie) Read(c *fiber.Ctx) string {
	raw := c.Cookies(sc.name())
	if raw == "" {
		return ""
	}
	sid, err := jwt.ParseSession(sc.Secret, raw)
	if err != nil {
		return ""
	}
	return sid
}

// Clear expira la cookie en el navegador.
func (sc SessionCookie) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sc.name(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   sc.Secure,
		SameSite: sc.sameSite(),
	})
}

func (sc SessionCookie) sameSite() string {
	if sc.SameSite == fiber.CookieSameSiteLaxMode || sc.SameSite == "Lax" {
		return fiber.CookieSameSiteLaxMode
	}
	return fiber.CookieSameSiteStrictMode
}
