package repository

import "github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"

// EmployeeRepository 員工持久化 port。
type EmployeeRepository interface {
	Create(employee *entity.Employee) error
	Update(employee *entity.Employee) error
	GetByID(id string) (*entity.Employee, error)
	// ListByCompany returns every employee of the company, including
	// inactive/resigned ones — payroll calculation covers the whole roster.
	ListByCompany(companyID string) ([]*entity.Employee, error)
}
