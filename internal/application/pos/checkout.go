package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// MaxCheckoutLines tope de líneas por venta.
const MaxCheckoutLines = 200

// CheckoutLine producto y cantidad pedidos.
type CheckoutLine struct {
	ProductID string
	Quantity  int
}

// CheckoutInput carrito a cobrar. IdempotencyKey es opcional.
type CheckoutInput struct {
	CustomerID     string
	Department     string
	Lines          []CheckoutLine
	PaymentMethod  string
	IdempotencyKey string
}

// CheckoutUseCase convierte un carrito en una venta: descuenta stock, persiste venta y líneas
// y, en ventas a cuenta, aumenta el saldo del cliente. Todo en una sola transacción.
type CheckoutUseCase struct {
	txRunner     TxRunner
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	formatter    *ReceiptFormatter
	log          *logger.Logger
	now          func() time.Time
}

// NewCheckoutUseCase construye el caso de uso. saleRepo y customerRepo van atados al pool
// (lecturas fuera de la transacción: reintentos idempotentes).
func NewCheckoutUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	formatter *ReceiptFormatter,
	log *logger.Logger,
) *CheckoutUseCase {
	if formatter == nil {
		formatter = NewReceiptFormatter("en")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CheckoutUseCase{
		txRunner:     txRunner,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		formatter:    formatter,
		log:          log.Component("checkout"),
		now:          time.Now,
	}
}

// Checkout ejecuta la venta. Errores posibles: ErrForbidden, ErrInvalidInput, *InvalidLineItemError,
// ErrCustomerNotFound, *OutOfStockError, ErrIdempotencyConflict.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, identity *entity.Identity, in CheckoutInput) (*dto.CheckoutResponse, error) {
	if in.Department == "" {
		return nil, domain.ErrInvalidInput
	}
	// 1) Autorización antes de cualquier lectura
	if err := auth.Authorize(identity, auth.PermPOS, in.Department); err != nil {
		return nil, err
	}

	// 2) Validación de líneas y medio de pago (sin I/O)
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if in.PaymentMethod == entity.PaymentAccount && in.CustomerID == "" {
		return nil, domain.ErrInvalidInput
	}

	// 3) Reintento con la misma clave: devolver la venta ya confirmada
	if in.IdempotencyKey != "" {
		if resp, err := uc.replay(ctx, identity, in); resp != nil || err != nil {
			return resp, err
		}
	}

	now := uc.now().UTC()
	var sale *entity.Sale
	var customerName string

	err := uc.txRunner.RunInTx(ctx, func(r Repos) error {
		if in.CustomerID != "" {
			customer, err := r.Customers.GetByID(ctx, in.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return domain.ErrCustomerNotFound
			}
			customerName = customer.DisplayName
		}

		total := decimal.Zero
		items := make([]*entity.SaleLineItem, 0, len(in.Lines))
		for i, line := range in.Lines {
			product, err := r.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return &domain.InvalidLineItemError{Index: i, ProductID: line.ProductID, Reason: "producto inexistente"}
			}
			if !product.Active {
				return &domain.InvalidLineItemError{Index: i, ProductID: line.ProductID, Reason: "producto inactivo"}
			}
			if product.Department != in.Department && identity.Role != entity.RoleAdmin {
				return &domain.InvalidLineItemError{Index: i, ProductID: line.ProductID, Reason: "el producto pertenece a otro departamento"}
			}

			// Descuento condicional: la fila queda bloqueada hasta el commit y el precio leído es el vigente.
			unitPrice, ok, err := r.Products.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// el stock leído arriba puede haber cambiado; se informa el actual
				available := product.StockQuantity
				if current, err := r.Products.GetByID(ctx, product.ID); err == nil && current != nil {
					available = current.StockQuantity
				}
				return &domain.OutOfStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   available,
				}
			}

			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, &entity.SaleLineItem{
				ID:          uuid.New().String(),
				Position:    i + 1,
				ProductID:   product.ID,
				SKU:         product.SKU,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   unitPrice,
				LineTotal:   lineTotal,
			})
		}

		sale = &entity.Sale{
			ID:             uuid.New().String(),
			CustomerID:     in.CustomerID,
			CashierID:      identity.UserID,
			CashierName:    identity.DisplayName,
			Department:     in.Department,
			TotalAmount:    total,
			PaymentMethod:  in.PaymentMethod,
			Status:         entity.SaleStatusCompleted,
			IdempotencyKey: in.IdempotencyKey,
			CreatedAt:      now,
			Items:          items,
		}
		if err := r.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, item := range items {
			item.SaleID = sale.ID
			if err := r.Sales.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		// Venta a cuenta: la deuda del cliente aumenta en el total
		if in.PaymentMethod == entity.PaymentAccount {
			if _, err := r.Customers.AdjustBalance(ctx, in.CustomerID, total); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Dos reintentos simultáneos con la misma clave: el perdedor choca con el índice único.
		if errors.Is(err, domain.ErrDuplicate) && in.IdempotencyKey != "" {
			if resp, rerr := uc.replay(ctx, identity, in); resp != nil || rerr != nil {
				return resp, rerr
			}
		}
		uc.logRejection(identity, in, err)
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("cashier_id", identity.UserID).
		Str("department", sale.Department).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Msg("venta registrada")

	return &dto.CheckoutResponse{
		Success:     true,
		SaleID:      sale.ID,
		TotalAmount: sale.TotalAmount,
		Receipt:     buildReceipt(uc.formatter, sale, customerName),
	}, nil
}

// replay devuelve la venta asociada a la clave, o (nil, nil) si no existe. La clave solo
// repite la venta del mismo cajero y del mismo carrito; cualquier otro uso es un conflicto.
func (uc *CheckoutUseCase) replay(ctx context.Context, identity *entity.Identity, in CheckoutInput) (*dto.CheckoutResponse, error) {
	sale, err := uc.saleRepo.GetByIdempotencyKey(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("buscar venta por clave de idempotencia: %w", err)
	}
	if sale == nil {
		return nil, nil
	}
	if sale.CashierID != identity.UserID {
		return nil, domain.ErrIdempotencyConflict
	}
	if !sameCart(sale, in) {
		uc.log.Warn().
			Str("sale_id", sale.ID).
			Str("cashier_id", identity.UserID).
			Msg("clave de idempotencia reutilizada con otro carrito")
		return nil, domain.ErrIdempotencyConflict
	}
	customerName, err := customerNameFor(ctx, uc.customerRepo, sale.CustomerID)
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutResponse{
		Success:     true,
		SaleID:      sale.ID,
		TotalAmount: sale.TotalAmount,
		Replayed:    true,
		Receipt:     buildReceipt(uc.formatter, sale, customerName),
	}, nil
}

func (uc *CheckoutUseCase) logRejection(identity *entity.Identity, in CheckoutInput, err error) {
	ev := uc.log.Info()
	var oos *domain.OutOfStockError
	switch {
	case errors.As(err, &oos):
		ev = ev.Str("product_id", oos.ProductID).Int("requested", oos.Requested)
	case errors.Is(err, domain.ErrInvalidLineItem), errors.Is(err, domain.ErrCustomerNotFound):
	default:
		ev = uc.log.Error()
	}
	ev.Err(err).
		Str("cashier_id", identity.UserID).
		Str("department", in.Department).
		Int("lines", len(in.Lines)).
		Msg("venta rechazada, transacción revertida")
}

// sameCart compara el pedido con la venta guardada: departamento, medio de pago, cliente y
// las líneas (producto, cantidad) en el mismo orden.
func sameCart(sale *entity.Sale, in CheckoutInput) bool {
	if sale.Department != in.Department || sale.PaymentMethod != in.PaymentMethod || sale.CustomerID != in.CustomerID {
		return false
	}
	if len(sale.Items) != len(in.Lines) {
		return false
	}
	for i, item := range sale.Items {
		if item.ProductID != in.Lines[i].ProductID || item.Quantity != in.Lines[i].Quantity {
			return false
		}
	}
	return true
}

func validateLines(lines []CheckoutLine) error {
	if len(lines) == 0 || len(lines) > MaxCheckoutLines {
		return domain.ErrInvalidInput
	}
	for i, l := range lines {
		if l.ProductID == "" {
			return &domain.InvalidLineItemError{Index: i, Reason: "productId requerido"}
		}
		if l.Quantity <= 0 {
			return &domain.InvalidLineItemError{Index: i, ProductID: l.ProductID, Reason: "la cantidad debe ser mayor que cero"}
		}
	}
	return nil
}

func customerNameFor(ctx context.Context, repo repository.CustomerRepository, customerID string) (string, error) {
	if customerID == "" || repo == nil {
		return "", nil
	}
	c, err := repo.GetByID(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("buscar cliente: %w", err)
	}
	if c == nil {
		return "", nil
	}
	return c.DisplayName, nil
}
