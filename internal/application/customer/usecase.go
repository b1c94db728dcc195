package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
)

// recentPayments abonos incluidos en el detalle del cliente.
const recentPayments = 20

// UseCase casos de uso de clientes (alumnos con cuenta corriente).
type UseCase struct {
	repo        repository.CustomerRepository
	paymentRepo repository.PaymentRepository
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.CustomerRepository, paymentRepo repository.PaymentRepository) *UseCase {
	return &UseCase{repo: repo, paymentRepo: paymentRepo, now: time.Now}
}

// Create crea un cliente con saldo cero. Sin departamento se asigna el del usuario.
func (uc *UseCase) Create(ctx context.Context, identity *entity.Identity, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := auth.Authorize(identity, auth.PermCustomers, ""); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	department := in.Department
	if department == "" {
		department = auth.VisibleDepartment(identity)
	}
	if !auth.CanSee(identity, department) {
		return nil, domain.ErrForbidden
	}
	now := uc.now().UTC()
	c := &entity.Customer{
		ID:          uuid.New().String(),
		DisplayName: name,
		ClassName:   in.ClassName,
		Balance:     decimal.Zero,
		Department:  department,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	out := toResponse(c)
	return &out, nil
}

// List lista clientes visibles para el usuario, filtrando por nombre.
func (uc *UseCase) List(ctx context.Context, identity *entity.Identity, search string, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	if err := auth.Authorize(identity, auth.PermCustomers, ""); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, auth.VisibleDepartment(identity), strings.TrimSpace(search), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toResponse(c))
	}
	return &dto.CustomerListResponse{
		Success: true,
		Items:   items,
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Get devuelve el cliente y sus últimos abonos.
func (uc *UseCase) Get(ctx context.Context, identity *entity.Identity, id string) (*dto.CustomerDetailResponse, error) {
	if err := auth.Authorize(identity, auth.PermCustomers, ""); err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente: %w", err)
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if !auth.CanSee(identity, c.Department) {
		return nil, domain.ErrForbidden
	}
	payments, err := uc.paymentRepo.ListByCustomer(ctx, id, recentPayments)
	if err != nil {
		return nil, fmt.Errorf("listar abonos: %w", err)
	}
	summaries := make([]dto.PaymentSummary, 0, len(payments))
	for _, p := range payments {
		summaries = append(summaries, dto.PaymentSummary{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			ReceivedBy: p.ReceivedBy,
			Note:       p.Note,
			CreatedAt:  p.CreatedAt,
		})
	}
	return &dto.CustomerDetailResponse{Success: true, Customer: toResponse(c), Payments: summaries}, nil
}

func toResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		ClassName:   c.ClassName,
		Balance:     c.Balance,
		Department:  c.Department,
	}
}
