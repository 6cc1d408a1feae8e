package entity

import "time"

// Company 公司 — the payroll tenant. Users join companies through memberships.
type Company struct {
	ID          string
	Name        string
	TaxID       string // 統一編號（8 碼，唯一）
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
