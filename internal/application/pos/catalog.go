package pos

import (
	"context"
	"fmt"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
)

// CatalogUseCase productos vendibles de un departamento para la pantalla de caja.
type CatalogUseCase struct {
	productRepo repository.ProductRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(productRepo repository.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{productRepo: productRepo}
}

// ListDepartmentProducts lista productos activos del departamento.
func (uc *CatalogUseCase) ListDepartmentProducts(ctx context.Context, identity *entity.Identity, department string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if err := auth.Authorize(identity, auth.PermPOS, department); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.productRepo.ListByDepartment(ctx, department, true, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Success: true,
		Items:   items,
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ToProductResponse mapea la entidad a su representación JSON.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Department:       p.Department,
		UnitPrice:        p.UnitPrice,
		StockQuantity:    p.StockQuantity,
		ReorderThreshold: p.ReorderThreshold,
		NeedsReorder:     p.NeedsReorder(),
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
