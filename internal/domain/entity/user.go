package entity

import "time"

// User represents an account that manages one or more companies' payroll.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, never plaintext after persisting
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserCompany 使用者與公司的關聯（多對多）。
type UserCompany struct {
	ID        string
	UserID    string
	CompanyID string
	CreatedAt time.Time
}
