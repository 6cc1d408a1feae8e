package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	apppayroll "github.com/WENLIN-CHANG/salary-bee/internal/application/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
)

var _ apppayroll.TxRunner = (*TxRunner)(nil)

// TxRunner runs callbacks inside one PostgreSQL transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPayroll begins a transaction, hands fn repositories bound to it, and
// commits — or rolls back on any error, leaving zero writes behind.
func (r *TxRunner) RunPayroll(ctx context.Context, fn func(
	payrollRepo repository.PayrollRepository,
	itemRepo repository.PayrollItemRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	payrollRepo := NewPayrollRepository(tx)
	itemRepo := NewPayrollItemRepository(tx)

	if err := fn(payrollRepo, itemRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
