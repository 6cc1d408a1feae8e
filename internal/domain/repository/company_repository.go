package repository

import "github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"

// CompanyRepository 公司持久化 port，實作在 infrastructure。
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	GetByTaxID(taxID string) (*entity.Company, error)
	List(limit, offset int) ([]*entity.Company, error)
}
