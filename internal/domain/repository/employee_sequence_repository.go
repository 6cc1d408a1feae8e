package repository

import "github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"

// EmployeeSequenceRepository 員工編號計數器 port。
//
// Next must be atomic per (companyID, year): under unbounded concurrent
// callers every returned number is distinct and consecutive, starting at 1.
// The Postgres adapter uses a single upsert-returning statement; in-memory
// implementations must hold a per-key lock for the increment.
type EmployeeSequenceRepository interface {
	Next(companyID string, year int) (int, error)
	// Reset sets the counter back to 0; no-op if the counter does not exist.
	Reset(companyID string, year int) error
	Get(companyID string, year int) (*entity.EmployeeSequence, error)
}
