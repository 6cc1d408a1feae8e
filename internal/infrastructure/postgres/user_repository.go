package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements UserRepository over PostgreSQL, including the
// user↔company memberships.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(context.Background(), query,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(context.Background(), query, id))
}

func (r *UserRepo) FindByEmail(email string) (*entity.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(context.Background(), query, email))
}

// AddCompany links the user to a company; duplicate links are a no-op.
func (r *UserRepo) AddCompany(userID, companyID string) error {
	query := `
		INSERT INTO user_companies (id, user_id, company_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, company_id) DO NOTHING`
	_, err := r.pool.Exec(context.Background(), query, uuid.New().String(), userID, companyID)
	if err != nil {
		return fmt.Errorf("add company membership: %w", err)
	}
	return nil
}

// CompaniesOf returns the user's companies, oldest membership first.
func (r *UserRepo) CompaniesOf(userID string) ([]*entity.Company, error) {
	query := `
		SELECT c.id, c.name, c.tax_id, c.description, c.created_at, c.updated_at
		FROM companies c
		JOIN user_companies uc ON uc.company_id = c.id
		WHERE uc.user_id = $1
		ORDER BY uc.created_at`
	rows, err := r.pool.Query(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		var description *string
		if err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		if description != nil {
			c.Description = *description
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *UserRepo) IsMember(userID, companyID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_companies WHERE user_id = $1 AND company_id = $2)`
	var ok bool
	if err := r.pool.QueryRow(context.Background(), query, userID, companyID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

func (r *UserRepo) scanOne(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
