package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// SaleUseCase consulta y anulación de ventas.
type SaleUseCase struct {
	txRunner     TxRunner
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	formatter    *ReceiptFormatter
	log          *logger.Logger
	now          func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner TxRunner, saleRepo repository.SaleRepository, customerRepo repository.CustomerRepository, formatter *ReceiptFormatter, log *logger.Logger) *SaleUseCase {
	if formatter == nil {
		formatter = NewReceiptFormatter("en")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txRunner:     txRunner,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		formatter:    formatter,
		log:          log.Component("sales"),
		now:          time.Now,
	}
}

// GetSale devuelve el recibo de una venta del departamento del usuario (admin: cualquiera).
func (uc *SaleUseCase) GetSale(ctx context.Context, identity *entity.Identity, saleID string) (*dto.SaleResponse, error) {
	if err := auth.Authorize(identity, auth.PermPOS, ""); err != nil {
		return nil, err
	}
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("buscar venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if err := auth.Authorize(identity, auth.PermPOS, sale.Department); err != nil {
		return nil, err
	}
	customerName, err := customerNameFor(ctx, uc.customerRepo, sale.CustomerID)
	if err != nil {
		return nil, err
	}
	return &dto.SaleResponse{Success: true, Receipt: buildReceipt(uc.formatter, sale, customerName)}, nil
}

// VoidSale anula una venta completada: repone el stock de cada línea y, si fue a cuenta,
// descuenta el total del saldo del cliente. Las líneas se conservan para auditoría.
func (uc *SaleUseCase) VoidSale(ctx context.Context, identity *entity.Identity, saleID string) (*dto.SaleResponse, error) {
	if err := auth.Authorize(identity, auth.PermRefunds, ""); err != nil {
		return nil, err
	}

	var sale *entity.Sale
	var customerName string
	now := uc.now().UTC()

	err := uc.txRunner.RunInTx(ctx, func(r Repos) error {
		var err error
		sale, err = r.Sales.GetByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if err := auth.Authorize(identity, auth.PermPOS, sale.Department); err != nil {
			return err
		}
		if sale.Status != entity.SaleStatusCompleted {
			return domain.ErrSaleNotVoidable
		}
		for _, item := range sale.Items {
			if _, _, err := r.Products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if sale.CustomerID != "" {
			customer, err := r.Customers.GetByID(ctx, sale.CustomerID)
			if err != nil {
				return err
			}
			if customer != nil {
				customerName = customer.DisplayName
			}
			if sale.PaymentMethod == entity.PaymentAccount {
				if _, err := r.Customers.AdjustBalance(ctx, sale.CustomerID, sale.TotalAmount.Neg()); err != nil {
					return err
				}
			}
		}
		if err := r.Sales.MarkVoided(ctx, sale.ID, identity.UserID, now); err != nil {
			return err
		}
		sale.Status = entity.SaleStatusVoided
		sale.VoidedAt = &now
		sale.VoidedBy = identity.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("sale_id", sale.ID).Str("voided_by", identity.UserID).Msg("venta anulada")
	return &dto.SaleResponse{Success: true, Receipt: buildReceipt(uc.formatter, sale, customerName)}, nil
}
