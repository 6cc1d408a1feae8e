package dto

import (
	"time"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
)

type CreateCompanyRequest struct {
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"` // 統一編號，8 碼數字
	Description string `json:"description"`
}

type CompanyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TaxID       string    `json:"tax_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCompanyResponse(c *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		TaxID:       c.TaxID,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

func NewCompanyListResponse(companies []*entity.Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, NewCompanyResponse(c))
	}
	return out
}
