package domain

import "errors"

// Domain errors (no external dependencies). Checked with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicate          = errors.New("duplicate resource")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrEmailAlreadyExists = errors.New("email already registered")

	// ErrPayrollNotEditable 薪資批次已確認，不可重新計算
	ErrPayrollNotEditable = errors.New("payroll is not editable")

	// ErrInvalidTransition 狀態機不允許的轉換
	ErrInvalidTransition = errors.New("invalid payroll state transition")

	// ErrLookupUnavailable 保險級距表無法載入（慢儲存不可用）
	ErrLookupUnavailable = errors.New("insurance rate table unavailable")

	// ErrFuturePeriod 薪資期間不可設定為未來
	ErrFuturePeriod = errors.New("payroll period cannot be in the future")

	// ErrDuplicatePeriod 該公司在此年月已有薪資批次
	ErrDuplicatePeriod = errors.New("payroll already exists for this period")

	// ErrNegativeNetPay 實發薪資為負數（扣款超過應發薪資）
	ErrNegativeNetPay = errors.New("net pay is negative")
)
