package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

type productService interface {
	List(ctx context.Context, identity *entity.Identity, department string, page dto.PageRequest) (*dto.ProductListResponse, error)
	Create(ctx context.Context, identity *entity.Identity, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, identity *entity.Identity, id string) (*dto.ProductResponse, error)
	Update(ctx context.Context, identity *entity.Identity, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, identity *entity.Identity, id string, delta int) (*dto.ProductResponse, error)
	ReorderList(ctx context.Context, identity *entity.Identity, department string) (*dto.ReorderListResponse, error)
}

// ProductHandler maneja el inventario de productos (protegido, permiso inventory).
type ProductHandler struct {
	uc   productService
	errs errorMapper
}

// NewProductHandler construye el handler.
func NewProductHandler(uc productService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, errs: newErrorMapper(log)}
}

// Create godoc
// @Summary      Crear producto
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         inventory
// @Produce      json
// @Param        id   path  string  true  "Product ID"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         inventory
// @Produce      json
// @Param        department  query  string  false  "Departamento (por defecto el de la sesión)"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/inventory/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetIdentity(c), c.Query("department"), page)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Product ID"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// AdjustStock godoc
// @Summary      Reponer o ajustar stock (nunca por debajo de cero)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Product ID"
// @Param        body  body  dto.AdjustStockRequest  true  "delta"
// @Success      200   {object}  dto.ProductResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.uc.AdjustStock(c.UserContext(), GetIdentity(c), c.Params("id"), in.Delta)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Reorder GET /api/inventory/reorder
func (h *ProductHandler) Reorder(c *fiber.Ctx) error {
	out, err := h.uc.ReorderList(c.UserContext(), GetIdentity(c), c.Query("department"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}
