package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/dto"
	apppayroll "github.com/WENLIN-CHANG/salary-bee/internal/application/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	calc "github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
)

// PayrollHandler handles the payroll run lifecycle (protected, company-scoped).
type PayrollHandler struct {
	uc *apppayroll.UseCase
}

func NewPayrollHandler(uc *apppayroll.UseCase) *PayrollHandler {
	return &PayrollHandler{uc: uc}
}

// Create opens a draft run for a period.
// POST /api/payrolls
func (h *PayrollHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePayrollRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	p, err := h.uc.Create(c.Context(), GetCompanyID(c), in.Year, in.Month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "year and a month between 1 and 12 are required"})
		}
		if errors.Is(err, domain.ErrFuturePeriod) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "FUTURE_PERIOD", Message: "payroll period must not be in the future"})
		}
		if errors.Is(err, domain.ErrDuplicatePeriod) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_PERIOD", Message: "a payroll for this period already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPayrollResponse(p))
}

// List returns the company's runs, newest first.
// GET /api/payrolls
func (h *PayrollHandler) List(c *fiber.Ctx) error {
	payrolls, err := h.uc.List(c.Context(), GetCompanyID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.NewPayrollListResponse(payrolls))
}

// GetByID returns a run with its line items.
// GET /api/payrolls/:id
func (h *PayrollHandler) GetByID(c *fiber.Ctx) error {
	p, items, err := h.uc.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return payrollError(c, err)
	}
	return c.JSON(dto.NewPayrollDetailResponse(p, items))
}

// Calculate computes and persists the whole batch.
// POST /api/payrolls/:id/calculate
func (h *PayrollHandler) Calculate(c *fiber.Ctx) error {
	p, err := h.uc.Calculate(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return calculationError(c, err)
	}
	return c.JSON(dto.NewPayrollResponse(p))
}

// Preview computes the batch without persisting anything.
// GET /api/payrolls/:id/preview
func (h *PayrollHandler) Preview(c *fiber.Ctx) error {
	calcs, err := h.uc.Preview(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return calculationError(c, err)
	}
	rows := make([]dto.PayrollPreviewRow, 0, len(calcs))
	for _, ec := range calcs {
		rows = append(rows, dto.NewPayrollPreviewRow(ec.Employee, ec.Result))
	}
	return c.JSON(rows)
}

// Confirm fires draft → confirmed.
// POST /api/payrolls/:id/confirm
func (h *PayrollHandler) Confirm(c *fiber.Ctx) error {
	p, err := h.uc.Confirm(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return payrollError(c, err)
	}
	return c.JSON(dto.NewPayrollResponse(p))
}

// MarkAsPaid fires confirmed → paid.
// POST /api/payrolls/:id/pay
func (h *PayrollHandler) MarkAsPaid(c *fiber.Ctx) error {
	p, err := h.uc.MarkAsPaid(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return payrollError(c, err)
	}
	return c.JSON(dto.NewPayrollResponse(p))
}

// Delete removes a draft run.
// DELETE /api/payrolls/:id
func (h *PayrollHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return payrollError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func payrollError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "payroll not found"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "access denied"})
	}
	if errors.Is(err, domain.ErrPayrollNotEditable) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_EDITABLE", Message: "payroll is no longer a draft"})
	}
	var transitionErr *calc.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: transitionErr.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// calculationError maps calculation-trigger failures. Well-understood domain
// failures keep their own codes; anything else is wrapped so internal details
// never reach the caller verbatim.
func calculationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrPayrollNotEditable) {
		return payrollError(c, err)
	}
	if errors.Is(err, domain.ErrLookupUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RATES_UNAVAILABLE", Message: "insurance rate table unavailable"})
	}
	var negErr *apppayroll.NegativeNetPayError
	if errors.As(err, &negErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "NEGATIVE_NET_PAY",
			Message: fmt.Sprintf("employee %s would receive a negative net pay", negErr.EmployeeID),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:    "CALCULATION_ERROR",
		Message: fmt.Sprintf("calculation error: %s", err.Error()),
	})
}
