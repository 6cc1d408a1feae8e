package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	calc "github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
)

type CreatePayrollRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type PayrollResponse struct {
	ID            string          `json:"id"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Period        string          `json:"period"` // 例如「2025年08月」
	Status        string          `json:"status"`
	TotalGrossPay decimal.Decimal `json:"total_gross_pay"`
	TotalNetPay   decimal.Decimal `json:"total_net_pay"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewPayrollResponse(p *entity.Payroll) PayrollResponse {
	return PayrollResponse{
		ID:            p.ID,
		Year:          p.Year,
		Month:         p.Month,
		Period:        p.PeriodText(),
		Status:        p.Status,
		TotalGrossPay: p.TotalGrossPay,
		TotalNetPay:   p.TotalNetPay,
		ConfirmedAt:   p.ConfirmedAt,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}

func NewPayrollListResponse(payrolls []*entity.Payroll) []PayrollResponse {
	out := make([]PayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		out = append(out, NewPayrollResponse(p))
	}
	return out
}

type PayrollItemResponse struct {
	ID                    string           `json:"id"`
	EmployeeID            string           `json:"employee_id"`
	BaseSalary            decimal.Decimal  `json:"base_salary"`
	TotalAllowances       decimal.Decimal  `json:"total_allowances"`
	TotalDeductions       decimal.Decimal  `json:"total_deductions"`
	TotalInsurancePremium decimal.Decimal  `json:"total_insurance_premium"`
	GrossPay              *decimal.Decimal `json:"gross_pay"`
	NetPay                *decimal.Decimal `json:"net_pay"`
}

func NewPayrollItemResponse(item *entity.PayrollItem) PayrollItemResponse {
	return PayrollItemResponse{
		ID:                    item.ID,
		EmployeeID:            item.EmployeeID,
		BaseSalary:            item.BaseSalary,
		TotalAllowances:       item.TotalAllowances,
		TotalDeductions:       item.TotalDeductions,
		TotalInsurancePremium: item.TotalInsurancePremium,
		GrossPay:              item.GrossPay,
		NetPay:                item.NetPay,
	}
}

type PayrollDetailResponse struct {
	PayrollResponse
	Items []PayrollItemResponse `json:"items"`
}

func NewPayrollDetailResponse(p *entity.Payroll, items []*entity.PayrollItem) PayrollDetailResponse {
	resp := PayrollDetailResponse{
		PayrollResponse: NewPayrollResponse(p),
		Items:           make([]PayrollItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, NewPayrollItemResponse(item))
	}
	return resp
}

// PayrollPreviewRow 試算結果（未入庫）。
type PayrollPreviewRow struct {
	EmployeeID            string          `json:"employee_id"` // EMP 編號
	Name                  string          `json:"name"`
	GrossPay              decimal.Decimal `json:"gross_pay"`
	TotalInsurancePremium decimal.Decimal `json:"total_insurance_premium"`
	TotalDeductions       decimal.Decimal `json:"total_deductions"`
	NetPay                decimal.Decimal `json:"net_pay"`
}

func NewPayrollPreviewRow(e *entity.Employee, r calc.Result) PayrollPreviewRow {
	return PayrollPreviewRow{
		EmployeeID:            e.EmployeeID,
		Name:                  e.Name,
		GrossPay:              r.GrossPay,
		TotalInsurancePremium: r.TotalInsurancePremium,
		TotalDeductions:       r.TotalDeductionsWithInsurance,
		NetPay:                r.NetPay,
	}
}
