package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
)

// CreateEmployeeRequest — the employee number is minted server-side, never
// supplied by the caller.
type CreateEmployeeRequest struct {
	Name       string                     `json:"name"`
	IDNumber   string                     `json:"id_number"`
	Email      string                     `json:"email"`
	Phone      string                     `json:"phone"`
	Department string                     `json:"department"`
	Position   string                     `json:"position"`
	HireDate   time.Time                  `json:"hire_date"`
	BaseSalary decimal.Decimal            `json:"base_salary"`
	Allowances map[string]decimal.Decimal `json:"allowances"`
	Deductions map[string]decimal.Decimal `json:"deductions"`
}

// UpdateEmployeeRequest 可更新欄位；nil 表示不變更。
type UpdateEmployeeRequest struct {
	Name       *string                    `json:"name"`
	Email      *string                    `json:"email"`
	Phone      *string                    `json:"phone"`
	Department *string                    `json:"department"`
	Position   *string                    `json:"position"`
	BaseSalary *decimal.Decimal           `json:"base_salary"`
	Allowances map[string]decimal.Decimal `json:"allowances"`
	Deductions map[string]decimal.Decimal `json:"deductions"`
	ResignDate *time.Time                 `json:"resign_date"`
	Active     *bool                      `json:"active"`
}

type EmployeeResponse struct {
	ID         string                     `json:"id"`
	EmployeeID string                     `json:"employee_id"`
	Name       string                     `json:"name"`
	Email      string                     `json:"email,omitempty"`
	Phone      string                     `json:"phone,omitempty"`
	Department string                     `json:"department,omitempty"`
	Position   string                     `json:"position,omitempty"`
	HireDate   time.Time                  `json:"hire_date"`
	ResignDate *time.Time                 `json:"resign_date,omitempty"`
	BaseSalary decimal.Decimal            `json:"base_salary"`
	Allowances map[string]decimal.Decimal `json:"allowances"`
	Deductions map[string]decimal.Decimal `json:"deductions"`
	Active     bool                       `json:"active"`
}

func NewEmployeeResponse(e *entity.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		Department: e.Department,
		Position:   e.Position,
		HireDate:   e.HireDate,
		ResignDate: e.ResignDate,
		BaseSalary: e.BaseSalary,
		Allowances: e.Allowances,
		Deductions: e.Deductions,
		Active:     e.Active,
	}
}

func NewEmployeeListResponse(employees []*entity.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, NewEmployeeResponse(e))
	}
	return out
}
