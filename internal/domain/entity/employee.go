package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee 員工。EmployeeID is the human-readable identifier minted by the
// sequence allocator (EMP<year><4-digit number>), unique per company.
type Employee struct {
	ID         string
	CompanyID  string
	EmployeeID string
	Name       string
	IDNumber   string // 身分證字號（選填）
	Email      string
	Phone      string
	Department string
	Position   string
	HireDate   time.Time
	ResignDate *time.Time // nil = 在職
	BaseSalary decimal.Decimal
	Allowances map[string]decimal.Decimal // 津貼：名目 → 金額
	Deductions map[string]decimal.Decimal // 扣款：名目 → 金額（借支、缺勤等）
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalAllowances 津貼總額。
func (e *Employee) TotalAllowances() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range e.Allowances {
		total = total.Add(amount)
	}
	return total
}

// TotalDeductions 其他扣款總額（不含保險費）。
func (e *Employee) TotalDeductions() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range e.Deductions {
		total = total.Add(amount)
	}
	return total
}

// GrossSalary 底薪加津貼。
func (e *Employee) GrossSalary() decimal.Decimal {
	return e.BaseSalary.Add(e.TotalAllowances())
}
