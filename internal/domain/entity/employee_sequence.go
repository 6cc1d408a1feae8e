package entity

import "time"

// EmployeeSequence 員工編號計數器，每個 (公司, 年度) 一筆。
// Mutated only through the allocator's atomic increment (or an explicit reset).
type EmployeeSequence struct {
	ID         string
	CompanyID  string
	Year       int
	LastNumber int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
