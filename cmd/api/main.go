package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/auth"
	"github.com/WENLIN-CHANG/salary-bee/internal/application/company"
	"github.com/WENLIN-CHANG/salary-bee/internal/application/employee"
	"github.com/WENLIN-CHANG/salary-bee/internal/application/insurance"
	apppayroll "github.com/WENLIN-CHANG/salary-bee/internal/application/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/infrastructure/postgres"
	httpRouter "github.com/WENLIN-CHANG/salary-bee/internal/interfaces/http"
	"github.com/WENLIN-CHANG/salary-bee/pkg/config"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	insuranceRepo := postgres.NewInsuranceRepository(pool)
	sequenceRepo := postgres.NewEmployeeSequenceRepository(pool)
	payrollRepo := postgres.NewPayrollRepository(pool)
	itemRepo := postgres.NewPayrollItemRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	rateCache := insurance.NewCache(insuranceRepo, cfg.Payroll.InsuranceCacheTTL, log)
	if cfg.Payroll.WarmCacheOnStart {
		// 預熱失敗不擋啟動，首次計算會再嘗試載入
		if _, err := rateCache.WarmUp(); err != nil {
			log.Warn().Err(err).Msg("insurance rate cache warm-up failed, will retry lazily")
		}
	}

	calcService := apppayroll.NewCalculationService(employeeRepo, rateCache, txRunner, cfg.Payroll.AllowMissingRates, log)
	payrollUC := apppayroll.NewUseCase(payrollRepo, itemRepo, calcService, log)

	allocator := employee.NewSequenceAllocator(sequenceRepo, log)
	employeeUC := employee.NewUseCase(employeeRepo, allocator, log)
	companyUC := company.NewUseCase(companyRepo, userRepo, log)
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CompanyUC:  companyUC,
		EmployeeUC: employeeUC,
		PayrollUC:  payrollUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
