package payroll

import (
	"context"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
)

// TxRunner runs fn inside one storage transaction, with the payroll repos
// bound to that transaction. fn returning an error rolls everything back:
// the persist phase is all-or-nothing.
type TxRunner interface {
	RunPayroll(ctx context.Context, fn func(
		payrollRepo repository.PayrollRepository,
		itemRepo repository.PayrollItemRepository,
	) error) error
}
