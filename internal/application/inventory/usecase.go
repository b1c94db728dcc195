package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/application/pos"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// ProductUseCase administración del catálogo y del stock de un departamento.
type ProductUseCase struct {
	repo repository.ProductRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, log *logger.Logger) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{repo: repo, log: log.Component("inventory"), now: time.Now}
}

// List lista productos (activos e inactivos). Sin department se usa el del usuario.
func (uc *ProductUseCase) List(ctx context.Context, identity *entity.Identity, department string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if department == "" {
		department = auth.VisibleDepartment(identity)
	}
	if err := auth.Authorize(identity, auth.PermInventory, department); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByDepartment(ctx, department, false, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, pos.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Success: true,
		Items:   items,
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Create da de alta un producto en el departamento indicado.
func (uc *ProductUseCase) Create(ctx context.Context, identity *entity.Identity, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := auth.Authorize(identity, auth.PermInventory, in.Department); err != nil {
		return nil, err
	}
	if in.SKU == "" || in.Name == "" || in.Department == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice.IsNegative() || !entity.ValidAmount(in.UnitPrice) || in.StockQuantity < 0 || in.ReorderThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now().UTC()
	p := &entity.Product{
		ID:               uuid.New().String(),
		SKU:              in.SKU,
		Name:             in.Name,
		Department:       in.Department,
		UnitPrice:        in.UnitPrice,
		StockQuantity:    in.StockQuantity,
		ReorderThreshold: in.ReorderThreshold,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", p.ID).Str("sku", p.SKU).Str("actor", identity.UserID).Msg("producto creado")
	out := pos.ToProductResponse(p)
	return &out, nil
}

// Get devuelve un producto si pertenece al departamento del usuario.
func (uc *ProductUseCase) Get(ctx context.Context, identity *entity.Identity, id string) (*dto.ProductResponse, error) {
	p, err := uc.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	out := pos.ToProductResponse(p)
	return &out, nil
}

// Update modifica nombre, precio, umbral o estado. El stock solo cambia con AdjustStock o ventas.
func (uc *ProductUseCase) Update(ctx context.Context, identity *entity.Identity, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		p.Name = *in.Name
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() || !entity.ValidAmount(*in.UnitPrice) {
			return nil, domain.ErrInvalidInput
		}
		p.UnitPrice = *in.UnitPrice
	}
	if in.ReorderThreshold != nil {
		if *in.ReorderThreshold < 0 {
			return nil, domain.ErrInvalidInput
		}
		p.ReorderThreshold = *in.ReorderThreshold
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	p.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	out := pos.ToProductResponse(p)
	return &out, nil
}

// AdjustStock suma delta al stock (reposición positiva, merma negativa).
// Un delta que dejaría el stock negativo devuelve *OutOfStockError sin modificar nada.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, identity *entity.Identity, id string, delta int) (*dto.ProductResponse, error) {
	if delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	qty, ok, err := uc.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("ajustar stock: %w", err)
	}
	if !ok {
		return nil, &domain.OutOfStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   -delta,
			Available:   p.StockQuantity,
		}
	}
	p.StockQuantity = qty
	ev := uc.log.Info()
	if p.NeedsReorder() {
		ev = uc.log.Warn()
	}
	ev.Str("product_id", p.ID).Int("delta", delta).Int("stock", qty).Str("actor", identity.UserID).Msg("stock ajustado")
	out := pos.ToProductResponse(p)
	return &out, nil
}

// ReorderList productos activos en o bajo su umbral, con la cantidad sugerida para volver
// al doble del umbral. Los de mayor faltante primero.
func (uc *ProductUseCase) ReorderList(ctx context.Context, identity *entity.Identity, department string) (*dto.ReorderListResponse, error) {
	if department == "" {
		department = auth.VisibleDepartment(identity)
	}
	if err := auth.Authorize(identity, auth.PermInventory, department); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListBelowReorder(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("listar productos a reponer: %w", err)
	}
	items := make([]dto.ReorderItem, 0, len(list))
	for _, p := range list {
		shortfall := p.ReorderThreshold - p.StockQuantity
		suggested := 2*p.ReorderThreshold - p.StockQuantity
		if suggested < 1 {
			suggested = 1
		}
		items = append(items, dto.ReorderItem{
			Product:           pos.ToProductResponse(p),
			Shortfall:         shortfall,
			SuggestedQuantity: suggested,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Shortfall > items[j].Shortfall })
	return &dto.ReorderListResponse{Success: true, Items: items}, nil
}

func (uc *ProductUseCase) load(ctx context.Context, identity *entity.Identity, id string) (*entity.Product, error) {
	if err := auth.Authorize(identity, auth.PermInventory, ""); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar producto: %w", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := auth.Authorize(identity, auth.PermInventory, p.Department); err != nil {
		return nil, err
	}
	return p, nil
}
