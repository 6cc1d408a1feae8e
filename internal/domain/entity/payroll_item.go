package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollItem 薪資明細 — one employee's computed figures within a payroll run.
// Unique per (PayrollID, EmployeeID); the calculation service upserts it on re-run.
type PayrollItem struct {
	ID                    string
	PayrollID             string
	EmployeeID            string // Employee.ID（內部主鍵，非 EMP 編號）
	BaseSalary            decimal.Decimal
	TotalAllowances       decimal.Decimal
	TotalDeductions       decimal.Decimal // 其他扣款（不含保險費）
	TotalInsurancePremium decimal.Decimal
	GrossPay              *decimal.Decimal // nil = 尚未計算
	NetPay                *decimal.Decimal // nil = 尚未計算
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
