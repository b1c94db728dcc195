package pos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// PaymentInput abono de un cliente.
type PaymentInput struct {
	CustomerID string
	Amount     decimal.Decimal
	Method     string
	Note       string
}

// PaymentUseCase registra abonos que reducen el saldo pendiente del cliente.
type PaymentUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(txRunner TxRunner, log *logger.Logger) *PaymentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PaymentUseCase{txRunner: txRunner, log: log.Component("payments"), now: time.Now}
}

// RecordPayment descuenta el monto del saldo y guarda el abono en la misma transacción.
// Un abono mayor a la deuda deja saldo a favor (negativo).
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, identity *entity.Identity, in PaymentInput) (*dto.PaymentResponse, error) {
	if err := auth.Authorize(identity, auth.PermPOS, ""); err != nil {
		return nil, err
	}
	if in.CustomerID == "" || !in.Amount.IsPositive() || !entity.ValidAmount(in.Amount) {
		return nil, domain.ErrInvalidInput
	}
	if in.Method != entity.PaymentCash && in.Method != entity.PaymentCard {
		return nil, domain.ErrInvalidInput
	}

	payment := &entity.Payment{
		ID:         uuid.New().String(),
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Method:     in.Method,
		ReceivedBy: identity.UserID,
		Note:       in.Note,
		CreatedAt:  uc.now().UTC(),
	}
	var balance decimal.Decimal

	err := uc.txRunner.RunInTx(ctx, func(r Repos) error {
		customer, err := r.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}
		if customer.Department != "" {
			if err := auth.Authorize(identity, auth.PermPOS, customer.Department); err != nil {
				return err
			}
		}
		balance, err = r.Customers.AdjustBalance(ctx, in.CustomerID, in.Amount.Neg())
		if err != nil {
			return err
		}
		return r.Payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("payment_id", payment.ID).Str("customer_id", in.CustomerID).Str("amount", in.Amount.StringFixed(2)).Msg("abono registrado")
	return &dto.PaymentResponse{
		Success:    true,
		PaymentID:  payment.ID,
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Balance:    balance,
	}, nil
}
