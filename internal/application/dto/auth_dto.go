package dto

import (
	"time"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// CompanyID 選擇要操作的公司；留空時取使用者第一間公司。
	CompanyID string `json:"company_id"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	CompanyID string       `json:"company_id"`
	User      UserResponse `json:"user"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
