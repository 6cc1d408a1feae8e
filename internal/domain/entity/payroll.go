package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Payroll lifecycle statuses. Transitions are monotonic: draft → confirmed → paid.
const (
	PayrollStatusDraft     = "draft"
	PayrollStatusConfirmed = "confirmed"
	PayrollStatusPaid      = "paid"
)

// Payroll 薪資批次 — one company's payroll run for a year/month, unique per period.
type Payroll struct {
	ID            string
	CompanyID     string
	Year          int
	Month         int
	Status        string
	TotalGrossPay decimal.Decimal
	TotalNetPay   decimal.Decimal
	ConfirmedAt   *time.Time
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanEdit 只有草稿狀態可以重新計算。
func (p *Payroll) CanEdit() bool {
	return p.Status == PayrollStatusDraft
}

// PeriodStart returns the first day of the payroll period.
func (p *Payroll) PeriodStart() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodText 顯示用期間文字，例如「2025年08月」。
func (p *Payroll) PeriodText() string {
	return fmt.Sprintf("%d年%02d月", p.Year, p.Month)
}
