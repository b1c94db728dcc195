package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInvalidCredentials  = errors.New("usuario o contraseña inválidos")
	ErrUnauthenticated     = errors.New("sesión inexistente o expirada")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrOutOfStock          = errors.New("stock insuficiente")
	ErrInvalidLineItem     = errors.New("línea de venta inválida")
	ErrCustomerNotFound    = errors.New("cliente no encontrado")
	ErrIdempotencyConflict = errors.New("la clave de idempotencia pertenece a otra venta")
	ErrSaleNotVoidable     = errors.New("la venta no se puede anular en su estado actual")
)

// OutOfStockError identifica el producto que dejó sin stock una venta.
// errors.Is(err, ErrOutOfStock) es verdadero.
type OutOfStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s (%s): solicitado %d, disponible %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

func (e *OutOfStockError) Is(target error) bool { return target == ErrOutOfStock }

// InvalidLineItemError describe una línea rechazada antes de persistir.
// errors.Is(err, ErrInvalidLineItem) es verdadero.
type InvalidLineItemError struct {
	Index     int
	ProductID string
	Reason    string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("línea %d (%s): %s", e.Index+1, e.ProductID, e.Reason)
}

func (e *InvalidLineItemError) Is(target error) bool { return target == ErrInvalidLineItem }
