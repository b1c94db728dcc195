package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU              string          `json:"sku" validate:"required,min=1,max=100"`
	Name             string          `json:"name" validate:"required,min=1,max=200"`
	Department       string          `json:"department" validate:"required,max=100"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	StockQuantity    int             `json:"stockQuantity" validate:"min=0"`
	ReorderThreshold int             `json:"reorderThreshold" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (el stock se ajusta aparte).
type UpdateProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	UnitPrice        *decimal.Decimal `json:"unitPrice"`
	ReorderThreshold *int             `json:"reorderThreshold" validate:"omitempty,min=0"`
	Active           *bool            `json:"active"`
}

// AdjustStockRequest body de POST /api/inventory/products/:id/stock.
type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Department       string          `json:"department"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	StockQuantity    int             `json:"stockQuantity"`
	ReorderThreshold int             `json:"reorderThreshold"`
	NeedsReorder     bool            `json:"needsReorder"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Success bool              `json:"success"`
	Items   []ProductResponse `json:"items"`
	Page    PageResponse      `json:"page"`
}

// ReorderItem producto bajo el umbral con la cantidad sugerida de reposición.
type ReorderItem struct {
	Product           ProductResponse `json:"product"`
	Shortfall         int             `json:"shortfall"`
	SuggestedQuantity int             `json:"suggestedQuantity"`
}

// ReorderListResponse respuesta de GET /api/inventory/reorder.
type ReorderListResponse struct {
	Success bool          `json:"success"`
	Items   []ReorderItem `json:"items"`
}
