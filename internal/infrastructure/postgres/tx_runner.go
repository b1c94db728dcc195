package postgres

import (
	"context"
	"fmt"

	"github.com/steadymonitor/pos-api/internal/application/pos"
)

var _ pos.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db TxBeginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si ctx vence antes del commit, la transacción se revierte; el rollback no usa el plazo de ctx.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(repos pos.Repos) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	repos := pos.Repos{
		Products:  NewProductRepository(tx),
		Customers: NewCustomerRepository(tx),
		Sales:     NewSaleRepository(tx),
		Payments:  NewPaymentRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
