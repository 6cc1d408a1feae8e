package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
)

var _ repository.EmployeeSequenceRepository = (*EmployeeSequenceRepo)(nil)

// EmployeeSequenceRepo implements the counter with a single upsert-returning
// statement. The row lock taken by ON CONFLICT DO UPDATE serializes concurrent
// callers on the same (company_id, year) key, so every caller reads back a
// distinct, consecutive number.
type EmployeeSequenceRepo struct {
	pool *pgxpool.Pool
}

func NewEmployeeSequenceRepository(pool *pgxpool.Pool) *EmployeeSequenceRepo {
	return &EmployeeSequenceRepo{pool: pool}
}

// Next atomically increments and returns the counter, creating it at 1 when
// absent. 一條 SQL 完成取鎖、遞增、讀回，不會跳號。
func (r *EmployeeSequenceRepo) Next(companyID string, year int) (int, error) {
	query := `
		INSERT INTO employee_sequences (id, company_id, year, last_number, created_at, updated_at)
		VALUES ($1, $2, $3, 1, NOW(), NOW())
		ON CONFLICT (company_id, year) DO UPDATE
			SET last_number = employee_sequences.last_number + 1,
			    updated_at  = NOW()
		RETURNING last_number`
	var n int
	err := r.pool.QueryRow(context.Background(), query, uuid.New().String(), companyID, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment employee sequence: %w", err)
	}
	return n, nil
}

// Reset sets the counter back to 0; missing counter is a no-op.
func (r *EmployeeSequenceRepo) Reset(companyID string, year int) error {
	query := `UPDATE employee_sequences SET last_number = 0, updated_at = NOW() WHERE company_id = $1 AND year = $2`
	_, err := r.pool.Exec(context.Background(), query, companyID, year)
	if err != nil {
		return fmt.Errorf("reset employee sequence: %w", err)
	}
	return nil
}

func (r *EmployeeSequenceRepo) Get(companyID string, year int) (*entity.EmployeeSequence, error) {
	query := `
		SELECT id, company_id, year, last_number, created_at, updated_at
		FROM employee_sequences WHERE company_id = $1 AND year = $2`
	var s entity.EmployeeSequence
	err := r.pool.QueryRow(context.Background(), query, companyID, year).Scan(
		&s.ID, &s.CompanyID, &s.Year, &s.LastNumber, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee sequence: %w", err)
	}
	return &s, nil
}
