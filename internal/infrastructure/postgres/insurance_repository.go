package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
)

var _ repository.InsuranceRepository = (*InsuranceRepo)(nil)

// InsuranceRepo reads the government rate table. Write access is out of scope:
// brackets are loaded by migration/seed scripts when the government publishes
// a new table.
type InsuranceRepo struct {
	pool *pgxpool.Pool
}

func NewInsuranceRepository(pool *pgxpool.Pool) *InsuranceRepo {
	return &InsuranceRepo{pool: pool}
}

// ActiveBrackets returns every bracket whose effective window contains asOf,
// all four insurance types together. The cache groups them.
func (r *InsuranceRepo) ActiveBrackets(asOf time.Time) ([]*entity.Insurance, error) {
	query := `
		SELECT id, insurance_type, grade_level, salary_min, salary_max, premium_base,
		       rate, employee_ratio, employer_ratio, government_ratio,
		       effective_date, expiry_date, created_at, updated_at
		FROM insurances
		WHERE effective_date <= $1 AND (expiry_date IS NULL OR expiry_date >= $1)
		ORDER BY insurance_type, salary_min`
	rows, err := r.pool.Query(context.Background(), query, asOf)
	if err != nil {
		return nil, fmt.Errorf("query insurance brackets: %w", err)
	}
	defer rows.Close()

	var list []*entity.Insurance
	for rows.Next() {
		var ins entity.Insurance
		if err := rows.Scan(
			&ins.ID, &ins.InsuranceType, &ins.GradeLevel, &ins.SalaryMin, &ins.SalaryMax,
			&ins.PremiumBase, &ins.Rate, &ins.EmployeeRatio, &ins.EmployerRatio, &ins.GovernmentRatio,
			&ins.EffectiveDate, &ins.ExpiryDate, &ins.CreatedAt, &ins.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan insurance bracket: %w", err)
		}
		list = append(list, &ins)
	}
	return list, rows.Err()
}
