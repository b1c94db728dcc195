package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// Códigos de error expuestos al cliente.
const (
	CodeInvalidCredentials = "InvalidCredentials"
	CodeUnauthenticated    = "Unauthenticated"
	CodeForbidden          = "Forbidden"
	CodeOutOfStock         = "OutOfStock"
	CodeInvalidLineItem    = "InvalidLineItem"
	CodeValidation         = "ValidationError"
	CodeCustomerNotFound   = "CustomerNotFound"
	CodeNotFound           = "NotFound"
	CodeConflict           = "Conflict"
	CodeInternal           = "InternalError"
)

// errorMapper traduce errores de dominio a respuestas HTTP. Lo que no reconoce es un 500
// genérico: el detalle solo va al log.
type errorMapper struct {
	log *logger.Logger
}

func newErrorMapper(log *logger.Logger) errorMapper {
	if log == nil {
		log = logger.Nop()
	}
	return errorMapper{log: log}
}

func (m errorMapper) write(c *fiber.Ctx, err error) error {
	status, body := m.classify(err)
	if status == fiber.StatusInternalServerError {
		m.log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
	}
	return c.Status(status).JSON(body)
}

func (m errorMapper) classify(err error) (int, dto.ErrorResponse) {
	resp := dto.ErrorResponse{Success: false}
	var oos *domain.OutOfStockError
	var badLine *domain.InvalidLineItemError

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		resp.Code, resp.Message = CodeInvalidCredentials, "usuario o contraseña inválidos"
		return fiber.StatusUnauthorized, resp
	case errors.Is(err, domain.ErrUnauthenticated):
		resp.Code, resp.Message = CodeUnauthenticated, "sesión inexistente o expirada"
		return fiber.StatusUnauthorized, resp
	case errors.Is(err, domain.ErrForbidden):
		resp.Code, resp.Message = CodeForbidden, "acceso denegado"
		return fiber.StatusForbidden, resp
	case errors.As(err, &oos):
		resp.Code, resp.Message, resp.ProductID = CodeOutOfStock, oos.Error(), oos.ProductID
		return fiber.StatusConflict, resp
	case errors.Is(err, domain.ErrOutOfStock):
		resp.Code, resp.Message = CodeOutOfStock, err.Error()
		return fiber.StatusConflict, resp
	case errors.As(err, &badLine):
		resp.Code, resp.Message, resp.ProductID = CodeInvalidLineItem, badLine.Error(), badLine.ProductID
		return fiber.StatusBadRequest, resp
	case errors.Is(err, domain.ErrInvalidLineItem):
		resp.Code, resp.Message = CodeInvalidLineItem, err.Error()
		return fiber.StatusBadRequest, resp
	case errors.Is(err, domain.ErrInvalidInput):
		resp.Code, resp.Message = CodeValidation, err.Error()
		return fiber.StatusBadRequest, resp
	case errors.Is(err, domain.ErrCustomerNotFound):
		resp.Code, resp.Message = CodeCustomerNotFound, "cliente no encontrado"
		return fiber.StatusNotFound, resp
	case errors.Is(err, domain.ErrNotFound):
		resp.Code, resp.Message = CodeNotFound, "recurso no encontrado"
		return fiber.StatusNotFound, resp
	case errors.Is(err, domain.ErrIdempotencyConflict),
		errors.Is(err, domain.ErrSaleNotVoidable),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrConflict):
		resp.Code, resp.Message = CodeConflict, err.Error()
		return fiber.StatusConflict, resp
	default:
		resp.Code, resp.Message = CodeInternal, "error interno, la operación no se realizó"
		return fiber.StatusInternalServerError, resp
	}
}

// FiberErrorHandler manejador global: errores de fiber (404 de ruta, body demasiado grande)
// conservan su status; el resto pasa por el mapeo de dominio.
func FiberErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	m := newErrorMapper(log)
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := CodeInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				code = CodeNotFound
			case fiber.StatusTooManyRequests:
				code = "TooManyRequests"
			case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
				code = CodeValidation
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return m.write(c, err)
	}
}
