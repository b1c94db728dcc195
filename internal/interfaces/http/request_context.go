package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestTimeout deja en c.UserContext() un contexto con plazo. Los casos de uso lo reciben
// como ctx; si vence con una transacción abierta, pgx la revierte. fasthttp no avisa cuando el
// cliente corta la conexión, así que el plazo es la única cancelación por request.
func RequestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
