package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/application/pos"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/infrastructure/metrics"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// HeaderIdempotencyKey header opcional que identifica un intento de cobro.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

type checkoutService interface {
	Checkout(ctx context.Context, identity *entity.Identity, in pos.CheckoutInput) (*dto.CheckoutResponse, error)
}

type catalogService interface {
	ListDepartmentProducts(ctx context.Context, identity *entity.Identity, department string, page dto.PageRequest) (*dto.ProductListResponse, error)
}

type saleService interface {
	GetSale(ctx context.Context, identity *entity.Identity, saleID string) (*dto.SaleResponse, error)
	VoidSale(ctx context.Context, identity *entity.Identity, saleID string) (*dto.SaleResponse, error)
}

type paymentService interface {
	RecordPayment(ctx context.Context, identity *entity.Identity, in pos.PaymentInput) (*dto.PaymentResponse, error)
}

// POSHandler punto de venta: cobro, catálogo del departamento, recibos, anulaciones y abonos.
type POSHandler struct {
	checkout checkoutService
	catalog  catalogService
	sales    saleService
	payments paymentService
	metrics  *metrics.Metrics
	errs     errorMapper
}

// NewPOSHandler construye el handler del punto de venta.
func NewPOSHandler(checkout checkoutService, catalog catalogService, sales saleService, payments paymentService, m *metrics.Metrics, log *logger.Logger) *POSHandler {
	return &POSHandler{
		checkout: checkout,
		catalog:  catalog,
		sales:    sales,
		payments: payments,
		metrics:  m,
		errs:     newErrorMapper(log),
	}
}

// Checkout godoc
// @Summary      Cobrar un carrito
// @Description  Descuenta stock, registra la venta y sus líneas y, si es a cuenta, aumenta el saldo del cliente. Todo o nada.
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Clave para reintentos seguros"
// @Param        body             body    dto.CheckoutRequest  true   "Carrito"
// @Success      201  {object}  dto.CheckoutResponse
// @Success      200  {object}  dto.CheckoutResponse  "Reintento de una venta ya registrada"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pos/checkout [post]
func (h *POSHandler) Checkout(c *fiber.Ctx) error {
	start := time.Now()
	var in dto.CheckoutRequest
	if err := bindJSON(c, &in); err != nil {
		h.metrics.ObserveCheckout("invalid", time.Since(start))
		return h.errs.write(c, err)
	}
	key := c.Get(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		h.metrics.ObserveCheckout("invalid", time.Since(start))
		return h.errs.write(c, fmt.Errorf("%w: %s demasiado largo", domain.ErrInvalidInput, HeaderIdempotencyKey))
	}

	lines := make([]pos.CheckoutLine, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = pos.CheckoutLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	out, err := h.checkout.Checkout(c.UserContext(), GetIdentity(c), pos.CheckoutInput{
		CustomerID:     in.CustomerID,
		Department:     in.Department,
		Lines:          lines,
		PaymentMethod:  in.PaymentMethod,
		IdempotencyKey: key,
	})
	if err != nil {
		h.metrics.ObserveCheckout(checkoutResult(err), time.Since(start))
		return h.errs.write(c, err)
	}
	if out.Replayed {
		h.metrics.ObserveCheckout("replayed", time.Since(start))
		return c.Status(fiber.StatusOK).JSON(out)
	}
	h.metrics.ObserveCheckout("completed", time.Since(start))
	return c.Status(fiber.StatusCreated).JSON(out)
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthenticated):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidLineItem),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrIdempotencyConflict):
		return "invalid"
	default:
		return "error"
	}
}

// ListProducts godoc
// @Summary      Productos activos del departamento
// @Tags         pos
// @Produce      json
// @Param        department  path   string  true   "Departamento"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {object}  dto.ProductListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/pos/products/{department} [get]
func (h *POSHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.catalog.ListDepartmentProducts(c.UserContext(), GetIdentity(c), c.Params("department"), page)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// GetSale godoc
// @Summary      Recibo de una venta
// @Tags         pos
// @Produce      json
// @Param        id   path  string  true  "Sale ID"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pos/sales/{id} [get]
func (h *POSHandler) GetSale(c *fiber.Ctx) error {
	out, err := h.sales.GetSale(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// VoidSale godoc
// @Summary      Anular una venta (repone stock y revierte saldo)
// @Tags         pos
// @Produce      json
// @Param        id   path  string  true  "Sale ID"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pos/sales/{id}/void [post]
func (h *POSHandler) VoidSale(c *fiber.Ctx) error {
	out, err := h.sales.VoidSale(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// RecordPayment godoc
// @Summary      Registrar abono de un cliente
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PaymentRequest  true  "customerId, amount, method"
// @Success      201  {object}  dto.PaymentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pos/payments [post]
func (h *POSHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.payments.RecordPayment(c.UserContext(), GetIdentity(c), pos.PaymentInput{
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Method:     in.Method,
		Note:       in.Note,
	})
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
