package repository

import (
	"time"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
)

// InsuranceRepository is the slow-store reader behind the rate-table cache.
// ActiveBrackets returns brackets whose effective window contains asOf,
// in no particular order; the cache groups and sorts them.
type InsuranceRepository interface {
	ActiveBrackets(asOf time.Time) ([]*entity.Insurance, error)
}
