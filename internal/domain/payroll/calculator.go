// Package payroll holds the pure payroll arithmetic and the run lifecycle
// state machine. Nothing in this package touches storage.
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
)

// BracketSource resolves the insurance bracket matching a salary, or nil.
// The in-memory rate table cache implements it; tests use literal tables.
type BracketSource interface {
	FindBracket(insuranceType string, salary decimal.Decimal) *entity.Insurance
}

// Result 單一員工的完整計算結果。
type Result struct {
	GrossPay                     decimal.Decimal
	TotalInsurancePremium        decimal.Decimal
	TotalDeductionsWithInsurance decimal.Decimal
	NetPay                       decimal.Decimal
}

// PremiumBreakdown 單一險種的保費分攤明細。
type PremiumBreakdown struct {
	Total      decimal.Decimal
	Employee   decimal.Decimal
	Employer   decimal.Decimal
	Government decimal.Decimal
	Bracket    *entity.Insurance
}

// GrossPay 應發薪資 = 底薪 + 津貼總額。
func GrossPay(baseSalary, totalAllowances decimal.Decimal) decimal.Decimal {
	return baseSalary.Add(totalAllowances)
}

// PremiumFor computes one insurance type's premium split for a salary.
// Returns nil when no bracket matches. Intermediate values stay decimal;
// truncation happens only when the four employee shares are summed.
func PremiumFor(table BracketSource, insuranceType string, salary decimal.Decimal) *PremiumBreakdown {
	bracket := table.FindBracket(insuranceType, salary)
	if bracket == nil {
		return nil
	}
	total := bracket.PremiumBase.Mul(bracket.Rate)
	return &PremiumBreakdown{
		Total:      total,
		Employee:   total.Mul(bracket.EmployeeRatio),
		Employer:   total.Mul(bracket.EmployerRatio),
		Government: total.Mul(bracket.GovernmentRatio),
		Bracket:    bracket,
	}
}

// InsurancePremium 員工負擔的保險費總和（勞保、健保、勞退、職災）。
// 底薪 <= 0 直接回傳 0；小數只在加總後截斷為整數元。
func InsurancePremium(baseSalary decimal.Decimal, table BracketSource) decimal.Decimal {
	if !baseSalary.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, insuranceType := range entity.InsuranceTypes {
		if breakdown := PremiumFor(table, insuranceType, baseSalary); breakdown != nil {
			total = total.Add(breakdown.Employee)
		}
	}
	return total.Truncate(0)
}

// TotalDeductions 總扣款 = 其他扣款 + 保險費。
func TotalDeductions(otherDeductions, insurancePremium decimal.Decimal) decimal.Decimal {
	return otherDeductions.Add(insurancePremium)
}

// NetPay 實發薪資 = 應發薪資 - 總扣款。
// 不設下限：負數結果由上層決定如何處理。
func NetPay(grossPay, totalDeductions decimal.Decimal) decimal.Decimal {
	return grossPay.Sub(totalDeductions)
}

// CalculateAll composes the calculation in fixed order:
// gross pay → insurance premium → total deductions → net pay.
func CalculateAll(baseSalary, totalAllowances, totalDeductions decimal.Decimal, table BracketSource) Result {
	grossPay := GrossPay(baseSalary, totalAllowances)
	insurancePremium := InsurancePremium(baseSalary, table)
	deductionsWithInsurance := TotalDeductions(totalDeductions, insurancePremium)
	netPay := NetPay(grossPay, deductionsWithInsurance)

	return Result{
		GrossPay:                     grossPay,
		TotalInsurancePremium:        insurancePremium,
		TotalDeductionsWithInsurance: deductionsWithInsurance,
		NetPay:                       netPay,
	}
}
