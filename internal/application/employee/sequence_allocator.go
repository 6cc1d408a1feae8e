package employee

import (
	"fmt"
	"time"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

const (
	allocatorMaxAttempts = 3
	allocatorBackoff     = 50 * time.Millisecond
)

// SequenceAllocator 員工編號派發器 — exactly-once, gap-free numbers per
// (company, year). Atomicity lives in the repository (a single
// upsert-returning statement); this layer adds bounded retry for transient
// storage failures. A number is only "spent" when Next returns it, so a
// failed attempt never leaks a gap.
type SequenceAllocator struct {
	repo    repository.EmployeeSequenceRepository
	log     *logger.Logger
	backoff func(time.Duration)
}

func NewSequenceAllocator(repo repository.EmployeeSequenceRepository, log *logger.Logger) *SequenceAllocator {
	return &SequenceAllocator{repo: repo, log: log, backoff: time.Sleep}
}

// WithBackoff overrides the retry sleep. Tests use it to avoid real waits.
func (a *SequenceAllocator) WithBackoff(fn func(time.Duration)) {
	a.backoff = fn
}

// NextNumber returns the next sequential number for (companyID, year),
// starting at 1. Safe under unbounded concurrent callers.
func (a *SequenceAllocator) NextNumber(companyID string, year int) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= allocatorMaxAttempts; attempt++ {
		n, err := a.repo.Next(companyID, year)
		if err == nil {
			return n, nil
		}
		lastErr = err
		a.log.Warn().
			Err(err).
			Str("company_id", companyID).
			Int("year", year).
			Int("attempt", attempt).
			Msg("sequence increment failed, retrying")
		if attempt < allocatorMaxAttempts {
			// 線性退避即可，同鍵的鎖順序一致不會死鎖
			a.backoff(allocatorBackoff * time.Duration(attempt))
		}
	}
	return 0, fmt.Errorf("allocate employee number for company %s year %d: %w", companyID, year, lastErr)
}

// ResetFor sets the counter back to 0. Idempotent; a missing counter is a no-op.
func (a *SequenceAllocator) ResetFor(companyID string, year int) error {
	return a.repo.Reset(companyID, year)
}

// FormatEmployeeID renders the human-readable identifier, e.g. EMP20250001.
func FormatEmployeeID(year, n int) string {
	return fmt.Sprintf("EMP%d%04d", year, n)
}
