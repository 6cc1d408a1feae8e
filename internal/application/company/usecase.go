// Package company manages payroll tenants and the creator's membership.
package company

import (
	"time"

	"github.com/google/uuid"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/dto"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

// UseCase 公司管理。
type UseCase struct {
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
	log         *logger.Logger
}

func NewUseCase(companyRepo repository.CompanyRepository, userRepo repository.UserRepository, log *logger.Logger) *UseCase {
	return &UseCase{companyRepo: companyRepo, userRepo: userRepo, log: log}
}

// Create registers a company and links the creating user as a member.
func (uc *UseCase) Create(userID string, in dto.CreateCompanyRequest) (*entity.Company, error) {
	if in.Name == "" || !validTaxID(in.TaxID) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.companyRepo.GetByTaxID(in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	c := &entity.Company{
		ID:          uuid.New().String(),
		Name:        in.Name,
		TaxID:       in.TaxID,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.companyRepo.Create(c); err != nil {
		return nil, err
	}
	if err := uc.userRepo.AddCompany(userID, c.ID); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", c.ID).Str("tax_id", c.TaxID).Msg("company created")
	return c, nil
}

// Get loads a company the user belongs to.
func (uc *UseCase) Get(userID, companyID string) (*entity.Company, error) {
	ok, err := uc.userRepo.IsMember(userID, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	c, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// List returns the companies the user belongs to.
func (uc *UseCase) List(userID string) ([]*entity.Company, error) {
	return uc.userRepo.CompaniesOf(userID)
}

// validTaxID 統一編號：恰好 8 碼數字。
func validTaxID(taxID string) bool {
	if len(taxID) != 8 {
		return false
	}
	for _, r := range taxID {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
