package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/auth"
	"github.com/WENLIN-CHANG/salary-bee/internal/application/company"
	"github.com/WENLIN-CHANG/salary-bee/internal/application/employee"
	apppayroll "github.com/WENLIN-CHANG/salary-bee/internal/application/payroll"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	AuthUC     *auth.UseCase
	CompanyUC  *company.UseCase
	EmployeeUC *employee.UseCase
	PayrollUC  *apppayroll.UseCase
	JWTSecret  string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies: token required, company scope not (建立第一間公司時還沒有 scope)
	companies := api.Group("/companies", AuthMiddleware(deps.JWTSecret))
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)

	// Company-scoped routes
	scoped := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireCompany())

	employees := scoped.Group("/employees")
	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	employees.Post("/", employeeHandler.Create)
	employees.Get("/", employeeHandler.List)
	employees.Get("/:id", employeeHandler.GetByID)
	employees.Put("/:id", employeeHandler.Update)

	payrolls := scoped.Group("/payrolls")
	payrollHandler := NewPayrollHandler(deps.PayrollUC)
	payrolls.Post("/", payrollHandler.Create)
	payrolls.Get("/", payrollHandler.List)
	payrolls.Get("/:id", payrollHandler.GetByID)
	payrolls.Post("/:id/calculate", payrollHandler.Calculate)
	payrolls.Get("/:id/preview", payrollHandler.Preview)
	payrolls.Post("/:id/confirm", payrollHandler.Confirm)
	payrolls.Post("/:id/pay", payrollHandler.MarkAsPaid)
	payrolls.Delete("/:id", payrollHandler.Delete)
}
