package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, customer_id, cashier_id, cashier_name, department, total_amount, payment_method,
	status, idempotency_key, created_at, voided_at, voided_by`

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera. Una clave de idempotencia repetida devuelve ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, customer_id, cashier_id, cashier_name, department, total_amount, payment_method, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, nullIfEmpty(s.CustomerID), s.CashierID, s.CashierName, s.Department, s.TotalAmount,
		s.PaymentMethod, s.Status, nullIfEmpty(s.IdempotencyKey), s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de venta.
func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleLineItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, position, product_id, sku, product_name, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SaleID, it.Position, it.ProductID, it.SKU, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// GetByID obtiene la venta con sus líneas ordenadas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetByIDForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
func (r *SaleRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// GetByIdempotencyKey busca la venta confirmada con esa clave.
func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	return r.findOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE idempotency_key = $1`, key)
}

// MarkVoided marca la venta como anulada.
func (r *SaleRepo) MarkVoided(ctx context.Context, id, voidedBy string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE sales SET status = $2, voided_at = $3, voided_by = $4 WHERE id = $1`,
		id, entity.SaleStatusVoided, at, voidedBy,
	)
	if err != nil {
		return fmt.Errorf("void sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) findOne(ctx context.Context, query string, arg any) (*entity.Sale, error) {
	var (
		s                       entity.Sale
		customerID, key, voidBy *string
	)
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&s.ID, &customerID, &s.CashierID, &s.CashierName, &s.Department, &s.TotalAmount, &s.PaymentMethod,
		&s.Status, &key, &s.CreatedAt, &s.VoidedAt, &voidBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.CustomerID = derefString(customerID)
	s.IdempotencyKey = derefString(key)
	s.VoidedBy = derefString(voidBy)

	items, err := r.items(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

func (r *SaleRepo) items(ctx context.Context, saleID string) ([]*entity.SaleLineItem, error) {
	query := `
		SELECT id, sale_id, position, product_id, sku, product_name, quantity, unit_price, line_total
		FROM sale_items WHERE sale_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleLineItem
	for rows.Next() {
		var it entity.SaleLineItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Position, &it.ProductID, &it.SKU, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}
	return list, nil
}
