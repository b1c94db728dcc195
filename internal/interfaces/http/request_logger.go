package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/infrastructure/metrics"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// RequestLogger registra una línea por request (id, método, ruta, status, latencia, usuario)
// y alimenta las métricas HTTP. Va después de requestid.
func RequestLogger(log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			// el status final lo decide el ErrorHandler; se aplica aquí para registrarlo
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		latency := time.Since(start)
		status := c.Response().StatusCode()

		route := c.Route().Path
		m.ObserveHTTP(c.Method(), route, strconv.Itoa(status), latency)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return nil
	}
}

// requestID valor puesto por el middleware requestid (o el header si vino del cliente).
func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok && v != "" {
		return v
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
