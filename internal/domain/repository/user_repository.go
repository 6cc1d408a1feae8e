package repository

import "github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"

// UserRepository 使用者持久化 port（含公司 membership）。
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	// AddCompany links user to a company; idempotent on duplicates.
	AddCompany(userID, companyID string) error
	// CompaniesOf returns the companies the user belongs to, oldest first.
	CompaniesOf(userID string) ([]*entity.Company, error)
	IsMember(userID, companyID string) (bool, error)
}
