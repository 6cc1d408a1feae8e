// Package insurance provides the in-memory rate-table cache that keeps payroll
// calculation from hitting the slow store once per employee (N+1).
package insurance

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

// DefaultTTL 快取有效期：24 小時後過期並懶惰重建。
const DefaultTTL = 24 * time.Hour

var _ payroll.BracketSource = (*RateTable)(nil)

// RateTable is an immutable snapshot of the active insurance brackets,
// grouped by type and sorted ascending by salary_min. Once built it is
// read-only; refreshes swap in a whole new table.
type RateTable struct {
	byType   map[string][]*entity.Insurance
	loadedAt time.Time
}

// FindBracket returns the first bracket of the type containing salary, or nil.
// The per-type slices are sorted and non-overlapping, so first match is the
// only match.
func (t *RateTable) FindBracket(insuranceType string, salary decimal.Decimal) *entity.Insurance {
	for _, bracket := range t.byType[insuranceType] {
		if bracket.Matches(salary) {
			return bracket
		}
	}
	return nil
}

// Size 級距總數（所有險種合計）。
func (t *RateTable) Size() int {
	n := 0
	for _, brackets := range t.byType {
		n += len(brackets)
	}
	return n
}

// LoadedAt returns when this snapshot was built.
func (t *RateTable) LoadedAt() time.Time {
	return t.loadedAt
}

// EmptyTable returns a table with no brackets. Used by the degraded
// zero-premium mode when the slow store is unavailable.
func EmptyTable() *RateTable {
	return &RateTable{byType: map[string][]*entity.Insurance{}, loadedAt: time.Now()}
}

// Cache 保險級距表快取，行程內共享。
//
// Readers load the current table through an atomic pointer, so a refresh never
// exposes a half-built table. A mutex serializes rebuilds: when the snapshot
// expires, exactly one caller rebuilds while the rest wait (no thundering
// herd against the slow store).
type Cache struct {
	repo repository.InsuranceRepository
	ttl  time.Duration
	log  *logger.Logger
	now  func() time.Time

	rebuildMu sync.Mutex
	table     atomic.Pointer[RateTable]
}

// NewCache builds the cache. ttl <= 0 falls back to DefaultTTL.
func NewCache(repo repository.InsuranceRepository, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{repo: repo, ttl: ttl, log: log, now: time.Now}
}

// WarmUp eagerly loads all active brackets and stores the snapshot,
// replacing whatever was cached. Call it at process start; a failure is an
// error value, never a crash.
func (c *Cache) WarmUp() (*RateTable, error) {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	table, err := c.build()
	if err != nil {
		return nil, err
	}
	c.table.Store(table)
	c.log.Info().Int("grades", table.Size()).Msg("insurance cache warmed up")
	return table, nil
}

// Fetch returns the cached table, rebuilding on miss or expiry.
func (c *Cache) Fetch() (*RateTable, error) {
	if table := c.table.Load(); table != nil && !c.expired(table) {
		return table, nil
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	// 可能已被前一個 caller 重建完成
	if table := c.table.Load(); table != nil && !c.expired(table) {
		return table, nil
	}

	table, err := c.build()
	if err != nil {
		return nil, err
	}
	c.table.Store(table)
	c.log.Info().Int("grades", table.Size()).Msg("insurance cache rebuilt")
	return table, nil
}

// Clear evicts the cached table; the next Fetch rebuilds.
func (c *Cache) Clear() {
	c.table.Store(nil)
}

func (c *Cache) expired(table *RateTable) bool {
	return c.now().Sub(table.loadedAt) >= c.ttl
}

// build reads the slow store and assembles a sorted, grouped snapshot.
func (c *Cache) build() (*RateTable, error) {
	now := c.now()
	brackets, err := c.repo.ActiveBrackets(now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, err)
	}

	byType := make(map[string][]*entity.Insurance)
	for _, bracket := range brackets {
		byType[bracket.InsuranceType] = append(byType[bracket.InsuranceType], bracket)
	}
	for _, list := range byType {
		sort.Slice(list, func(i, j int) bool {
			return list[i].SalaryMin.LessThan(list[j].SalaryMin)
		})
	}
	return &RateTable{byType: byType, loadedAt: now}, nil
}
