package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Aislamiento READ COMMITTED; la serialización la dan los SELECT ... FOR UPDATE y los advisory locks.
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner con el pool. timeout <= 0 desactiva el límite por transacción.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout}
}

// NewRepositories arma el conjunto de repositorios sobre un Querier (pool o tx).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Folios:       NewFolioRangeRepository(q),
		Products:     NewProductRepository(q),
		Movements:    NewStockMovementRepository(q),
		Customers:    NewCustomerRepository(q),
		Sales:        NewSaleRepository(q),
		Payments:     NewPaymentRepository(q),
		CashSessions: NewCashSessionRepository(q),
		Issuer:       NewIssuerRepository(q),
	}
}

// RunInTx inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// La unidad de trabajo no se cancela con el request: solo la limita el timeout del runner.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	ctx, cancel := r.unitContext(ctx)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	// Commit sin plazo: si el COMMIT ya salió, el resultado que se informa es el real.
	if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// unitContext separa la unidad de trabajo de la cancelación del llamador y le aplica el timeout configurado.
func (r *TxRunner) unitContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(parent)
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {}
}
