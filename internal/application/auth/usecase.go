// Package auth handles registration and login. A login token carries the
// company the session operates on; every payroll route is scoped by it.
package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/dto"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/jwt"
)

// JWTConfig token generation settings.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase 註冊與登入。
type UseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

func NewUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Register creates a user with a bcrypt-hashed password.
func (uc *UseCase) Register(in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// Login verifies the credentials, resolves the company the session will
// operate on, and issues a token scoped to it.
func (uc *UseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized // 不洩漏帳號是否存在
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	companyID, err := uc.resolveCompany(user.ID, in.CompanyID)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, companyID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		CompanyID: companyID,
		User:      dto.NewUserResponse(user),
	}, nil
}

// resolveCompany validates membership of the requested company, or falls back
// to the user's first company. A user with no company can still log in with an
// empty scope and create one.
func (uc *UseCase) resolveCompany(userID, requested string) (string, error) {
	if requested != "" {
		ok, err := uc.userRepo.IsMember(userID, requested)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.ErrForbidden
		}
		return requested, nil
	}
	companies, err := uc.userRepo.CompaniesOf(userID)
	if err != nil {
		return "", err
	}
	if len(companies) == 0 {
		return "", nil
	}
	return companies[0].ID, nil
}
