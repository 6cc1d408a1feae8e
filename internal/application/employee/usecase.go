// Package employee covers the employee roster: CRUD plus the concurrency-safe
// employee-number allocator.
package employee

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/dto"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

// UseCase 員工管理。
type UseCase struct {
	repo      repository.EmployeeRepository
	allocator *SequenceAllocator
	log       *logger.Logger
	now       func() time.Time
}

func NewUseCase(repo repository.EmployeeRepository, allocator *SequenceAllocator, log *logger.Logger) *UseCase {
	return &UseCase{repo: repo, allocator: allocator, log: log, now: time.Now}
}

// Create registers an employee and mints their EMP identifier from the
// company's sequence for the current year.
func (uc *UseCase) Create(ctx context.Context, companyID string, req dto.CreateEmployeeRequest) (*entity.Employee, error) {
	if companyID == "" || req.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if req.BaseSalary.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	n, err := uc.allocator.NextNumber(companyID, now.Year())
	if err != nil {
		return nil, err
	}

	hireDate := req.HireDate
	if hireDate.IsZero() {
		hireDate = now
	}
	e := &entity.Employee{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		EmployeeID: FormatEmployeeID(now.Year(), n),
		Name:       req.Name,
		IDNumber:   req.IDNumber,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Position:   req.Position,
		HireDate:   hireDate,
		BaseSalary: req.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if e.Allowances == nil {
		e.Allowances = map[string]decimal.Decimal{}
	}
	if e.Deductions == nil {
		e.Deductions = map[string]decimal.Decimal{}
	}

	if err := uc.repo.Create(e); err != nil {
		return nil, err
	}
	uc.log.Info().Str("employee_id", e.EmployeeID).Str("company_id", companyID).Msg("employee created")
	return e, nil
}

// Get loads one employee, enforcing company scoping.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*entity.Employee, error) {
	return uc.load(companyID, id)
}

// List returns the whole roster, inactive employees included.
func (uc *UseCase) List(ctx context.Context, companyID string) ([]*entity.Employee, error) {
	return uc.repo.ListByCompany(companyID)
}

// Update applies the non-nil fields of req. Setting a resign date also marks
// the employee inactive unless Active is set explicitly.
func (uc *UseCase) Update(ctx context.Context, companyID, id string, req dto.UpdateEmployeeRequest) (*entity.Employee, error) {
	e, err := uc.load(companyID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Email != nil {
		e.Email = *req.Email
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.Department != nil {
		e.Department = *req.Department
	}
	if req.Position != nil {
		e.Position = *req.Position
	}
	if req.BaseSalary != nil {
		if req.BaseSalary.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		e.BaseSalary = *req.BaseSalary
	}
	if req.Allowances != nil {
		e.Allowances = req.Allowances
	}
	if req.Deductions != nil {
		e.Deductions = req.Deductions
	}
	if req.ResignDate != nil {
		e.ResignDate = req.ResignDate
		e.Active = false
	}
	if req.Active != nil {
		e.Active = *req.Active
	}
	e.UpdatedAt = uc.now()

	if err := uc.repo.Update(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *UseCase) load(companyID, id string) (*entity.Employee, error) {
	e, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	if e.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return e, nil
}
