package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
)

// ──────────────────────────────────────────────────────────────────────────────
// Test helpers
// ──────────────────────────────────────────────────────────────────────────────

// staticTable is a literal BracketSource for pure-calculation tests.
type staticTable struct {
	brackets map[string][]*entity.Insurance
}

func (t *staticTable) FindBracket(insuranceType string, salary decimal.Decimal) *entity.Insurance {
	for _, b := range t.brackets[insuranceType] {
		if b.Matches(salary) {
			return b
		}
	}
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func bracket(insuranceType, min, max, premiumBase, rate, employeeRatio string) *entity.Insurance {
	b := &entity.Insurance{
		InsuranceType: insuranceType,
		SalaryMin:     dec(min),
		PremiumBase:   dec(premiumBase),
		Rate:          dec(rate),
		EmployeeRatio: dec(employeeRatio),
		EmployerRatio: dec("0.7"),
	}
	if max != "" {
		b.SalaryMax = decPtr(max)
	}
	return b
}

// laborOnlyTable 只有一個勞保級距 [25001, 50000]，對應規格的範例情境。
func laborOnlyTable() *staticTable {
	return &staticTable{brackets: map[string][]*entity.Insurance{
		entity.InsuranceLabor: {
			bracket(entity.InsuranceLabor, "25001", "50000", "35000", "0.115", "0.2"),
		},
	}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Pure arithmetic
// ──────────────────────────────────────────────────────────────────────────────

func TestGrossPay(t *testing.T) {
	assert.True(t, payroll.GrossPay(dec("40000"), dec("5000")).Equal(dec("45000")))
	assert.True(t, payroll.GrossPay(dec("0"), dec("0")).Equal(decimal.Zero))
}

func TestInsurancePremium_ZeroOrNegativeSalary(t *testing.T) {
	table := laborOnlyTable()
	assert.True(t, payroll.InsurancePremium(decimal.Zero, table).IsZero(),
		"底薪 0 應直接回傳 0")
	assert.True(t, payroll.InsurancePremium(dec("-100"), table).IsZero(),
		"底薪為負應直接回傳 0")
}

func TestInsurancePremium_NoMatchingBracket(t *testing.T) {
	table := laborOnlyTable()
	// 60000 is above the only bracket's ceiling; no type matches → 0.
	assert.True(t, payroll.InsurancePremium(dec("60000"), table).IsZero())
}

func TestInsurancePremium_MatchingBracket(t *testing.T) {
	table := laborOnlyTable()
	// 35000 * 0.115 * 0.2 = 805
	premium := payroll.InsurancePremium(dec("40000"), table)
	assert.True(t, premium.Equal(dec("805")), "got %s", premium)
}

func TestInsurancePremium_TruncatesOnlyFinalSum(t *testing.T) {
	// Two types whose employee shares are 402.5 each: per-type values keep
	// their decimals; only the sum (805.0) is truncated — not each share.
	table := &staticTable{brackets: map[string][]*entity.Insurance{
		entity.InsuranceLabor: {
			bracket(entity.InsuranceLabor, "0", "", "35000", "0.115", "0.1"),
		},
		entity.InsuranceHealth: {
			bracket(entity.InsuranceHealth, "0", "", "35000", "0.115", "0.1"),
		},
	}}
	premium := payroll.InsurancePremium(dec("30000"), table)
	assert.True(t, premium.Equal(dec("805")), "402.5 + 402.5 should truncate to 805, got %s", premium)

	// Single type: 402.5 truncates to 402 (not rounded to 403).
	single := &staticTable{brackets: map[string][]*entity.Insurance{
		entity.InsuranceLabor: {
			bracket(entity.InsuranceLabor, "0", "", "35000", "0.115", "0.1"),
		},
	}}
	premium = payroll.InsurancePremium(dec("30000"), single)
	assert.True(t, premium.Equal(dec("402")), "got %s", premium)
}

func TestPremiumFor_Breakdown(t *testing.T) {
	table := laborOnlyTable()
	breakdown := payroll.PremiumFor(table, entity.InsuranceLabor, dec("40000"))
	require.NotNil(t, breakdown)
	assert.True(t, breakdown.Total.Equal(dec("4025")))
	assert.True(t, breakdown.Employee.Equal(dec("805")))
	assert.True(t, breakdown.Employer.Equal(dec("2817.5")))
	require.NotNil(t, breakdown.Bracket)

	assert.Nil(t, payroll.PremiumFor(table, entity.InsuranceHealth, dec("40000")),
		"type without brackets should return nil")
}

func TestNetPay_NoFloorAtZero(t *testing.T) {
	// 扣款超過應發薪資時允許負數，由計算服務決定如何處理。
	net := payroll.NetPay(dec("1000"), dec("2500"))
	assert.True(t, net.Equal(dec("-1500")))
}

// ──────────────────────────────────────────────────────────────────────────────
// CalculateAll — spec scenario: employees A and B against a labor-only table
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateAll_EmployeeA(t *testing.T) {
	table := laborOnlyTable()
	// A: base=40000, allowances={transport:2000, meal:3000}, deductions={advance:1000}
	result := payroll.CalculateAll(dec("40000"), dec("5000"), dec("1000"), table)

	assert.True(t, result.GrossPay.Equal(dec("45000")))
	assert.True(t, result.TotalInsurancePremium.Equal(dec("805")))
	assert.True(t, result.TotalDeductionsWithInsurance.Equal(dec("1805")))
	assert.True(t, result.NetPay.Equal(dec("43195")))
}

func TestCalculateAll_EmployeeB(t *testing.T) {
	table := laborOnlyTable()
	// B: base=50000, allowances={role:5000}, no deductions; 50000 is the bracket ceiling.
	result := payroll.CalculateAll(dec("50000"), dec("5000"), decimal.Zero, table)

	assert.True(t, result.GrossPay.Equal(dec("55000")))
	assert.True(t, result.TotalInsurancePremium.Equal(dec("805")))
	assert.True(t, result.NetPay.Equal(dec("54195")))
}

func TestCalculateAll_Identities(t *testing.T) {
	table := laborOnlyTable()
	cases := []struct{ base, allowances, deductions string }{
		{"40000", "5000", "1000"},
		{"25001", "0", "0"},
		{"50000", "12345", "6789"},
		{"10000", "0", "999999"}, // net pay goes negative
		{"0", "3000", "0"},
	}
	for _, tc := range cases {
		result := payroll.CalculateAll(dec(tc.base), dec(tc.allowances), dec(tc.deductions), table)
		assert.True(t, result.GrossPay.Equal(dec(tc.base).Add(dec(tc.allowances))),
			"grossPay == baseSalary + allowances (base=%s)", tc.base)
		assert.True(t, result.NetPay.Equal(result.GrossPay.Sub(result.TotalDeductionsWithInsurance)),
			"netPay == grossPay - deductions - premium (base=%s)", tc.base)
		assert.True(t, result.TotalDeductionsWithInsurance.Equal(dec(tc.deductions).Add(result.TotalInsurancePremium)))
	}
}
