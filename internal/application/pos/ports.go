package pos

import (
	"context"

	"github.com/steadymonitor/pos-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Products  repository.ProductRepository
	Customers repository.CustomerRepository
	Sales     repository.SaleRepository
	Payments  repository.PaymentRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback; si no, commit. Nada de lo escrito en fn persiste a medias.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos Repos) error) error
}
