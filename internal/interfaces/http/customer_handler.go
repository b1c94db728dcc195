package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

type customerService interface {
	Create(ctx context.Context, identity *entity.Identity, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	List(ctx context.Context, identity *entity.Identity, search string, page dto.PageRequest) (*dto.CustomerListResponse, error)
	Get(ctx context.Context, identity *entity.Identity, id string) (*dto.CustomerDetailResponse, error)
}

// CustomerHandler maneja las peticiones HTTP de clientes (protegido, permiso customers).
type CustomerHandler struct {
	uc   customerService
	errs errorMapper
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc customerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{uc: uc, errs: newErrorMapper(log)}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/customers?search=&limit=&offset=
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetIdentity(c), c.Query("search"), page)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}
