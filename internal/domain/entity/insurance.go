package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// 保險類型（勞保、健保、勞退、職災）。
const (
	InsuranceLabor        = "labor"
	InsuranceHealth       = "health"
	InsurancePension      = "labor_pension"
	InsuranceOccupational = "occupational_injury"
)

// InsuranceTypes lists the four bracket types a premium calculation consults.
var InsuranceTypes = []string{InsuranceLabor, InsuranceHealth, InsurancePension, InsuranceOccupational}

// Insurance 投保級距 — one salary bracket of the government rate table.
// Within a type, active brackets are non-overlapping; at most one matches a salary.
type Insurance struct {
	ID              string
	InsuranceType   string
	GradeLevel      int
	SalaryMin       decimal.Decimal
	SalaryMax       *decimal.Decimal // nil = 無上限
	PremiumBase     decimal.Decimal  // 投保金額（級距基準）
	Rate            decimal.Decimal  // 費率（例：0.115）
	EmployeeRatio   decimal.Decimal  // 員工負擔比例
	EmployerRatio   decimal.Decimal  // 雇主負擔比例
	GovernmentRatio decimal.Decimal  // 政府負擔比例
	EffectiveDate   time.Time
	ExpiryDate      *time.Time // nil = 仍然有效
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Matches reports whether salary falls within [SalaryMin, SalaryMax]
// (SalaryMax nil means unbounded above).
func (i *Insurance) Matches(salary decimal.Decimal) bool {
	if salary.LessThan(i.SalaryMin) {
		return false
	}
	return i.SalaryMax == nil || !salary.GreaterThan(*i.SalaryMax)
}

// ActiveAt reports whether the bracket's effective window contains t.
func (i *Insurance) ActiveAt(t time.Time) bool {
	if i.EffectiveDate.After(t) {
		return false
	}
	return i.ExpiryDate == nil || !i.ExpiryDate.Before(t)
}
