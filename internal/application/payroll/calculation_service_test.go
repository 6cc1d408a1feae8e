package payroll_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/insurance"
	apppayroll "github.com/WENLIN-CHANG/salary-bee/internal/application/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	calc "github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	payrolls  map[string]*entity.Payroll
	items     map[string]*entity.PayrollItem // key: payrollID|employeeID
	employees []*entity.Employee
}

func newMemStore() *memStore {
	return &memStore{
		payrolls: map[string]*entity.Payroll{},
		items:    map[string]*entity.PayrollItem{},
	}
}

func itemKey(payrollID, employeeID string) string { return payrollID + "|" + employeeID }

type memEmployeeRepo struct{ store *memStore }

func (r *memEmployeeRepo) Create(e *entity.Employee) error { return nil }
func (r *memEmployeeRepo) Update(e *entity.Employee) error { return nil }
func (r *memEmployeeRepo) GetByID(id string) (*entity.Employee, error) {
	return nil, nil
}
func (r *memEmployeeRepo) ListByCompany(companyID string) ([]*entity.Employee, error) {
	var out []*entity.Employee
	for _, e := range r.store.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memPayrollRepo struct{ store *memStore }

func (r *memPayrollRepo) Create(p *entity.Payroll) error {
	r.store.payrolls[p.ID] = p
	return nil
}
func (r *memPayrollRepo) GetByID(id string) (*entity.Payroll, error)   { return r.store.payrolls[id], nil }
func (r *memPayrollRepo) GetByPeriod(string, int, int) (*entity.Payroll, error) { return nil, nil }
func (r *memPayrollRepo) ListByCompany(string) ([]*entity.Payroll, error)       { return nil, nil }
func (r *memPayrollRepo) UpdateTotals(p *entity.Payroll) error {
	stored, ok := r.store.payrolls[p.ID]
	if !ok {
		return errors.New("payroll not found")
	}
	stored.TotalGrossPay = p.TotalGrossPay
	stored.TotalNetPay = p.TotalNetPay
	return nil
}
func (r *memPayrollRepo) UpdateStatus(p *entity.Payroll) error { return nil }
func (r *memPayrollRepo) Delete(id string) error {
	delete(r.store.payrolls, id)
	return nil
}

// memItemRepo optionally fails when upserting failEmployeeID, to simulate a
// mid-batch write failure.
type memItemRepo struct {
	store          *memStore
	failEmployeeID string
}

func (r *memItemRepo) UpsertByEmployee(item *entity.PayrollItem) error {
	if r.failEmployeeID != "" && item.EmployeeID == r.failEmployeeID {
		return errors.New("simulated write failure")
	}
	key := itemKey(item.PayrollID, item.EmployeeID)
	if existing, ok := r.store.items[key]; ok {
		item.ID = existing.ID // update in place, not a new row
	}
	copied := *item
	r.store.items[key] = &copied
	return nil
}

func (r *memItemRepo) ListByPayroll(payrollID string) ([]*entity.PayrollItem, error) {
	var out []*entity.PayrollItem
	for _, item := range r.store.items {
		if item.PayrollID == payrollID {
			out = append(out, item)
		}
	}
	return out, nil
}

// memTxRunner snapshots the store before fn and restores it when fn fails,
// mirroring the all-or-nothing transaction contract.
type memTxRunner struct {
	store          *memStore
	failEmployeeID string
}

func (t *memTxRunner) RunPayroll(_ context.Context, fn func(
	payrollRepo repository.PayrollRepository,
	itemRepo repository.PayrollItemRepository,
) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	itemsBackup := make(map[string]*entity.PayrollItem, len(t.store.items))
	for k, v := range t.store.items {
		copied := *v
		itemsBackup[k] = &copied
	}
	payrollsBackup := make(map[string]*entity.Payroll, len(t.store.payrolls))
	for k, v := range t.store.payrolls {
		copied := *v
		payrollsBackup[k] = &copied
	}

	err := fn(&memPayrollRepo{store: t.store}, &memItemRepo{store: t.store, failEmployeeID: t.failEmployeeID})
	if err != nil {
		t.store.items = itemsBackup
		t.store.payrolls = payrollsBackup
		return err
	}
	return nil
}

type insuranceStoreFake struct {
	brackets []*entity.Insurance
	err      error
}

func (f *insuranceStoreFake) ActiveBrackets(_ time.Time) ([]*entity.Insurance, error) {
	return f.brackets, f.err
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const testCompanyID = "company-1"

func laborTable() *insuranceStoreFake {
	max := dec("50000")
	return &insuranceStoreFake{brackets: []*entity.Insurance{{
		InsuranceType: entity.InsuranceLabor,
		SalaryMin:     dec("25001"),
		SalaryMax:     &max,
		PremiumBase:   dec("35000"),
		Rate:          dec("0.115"),
		EmployeeRatio: dec("0.2"),
		EmployerRatio: dec("0.7"),
	}}}
}

func employeeA() *entity.Employee {
	return &entity.Employee{
		ID: "emp-a", CompanyID: testCompanyID, EmployeeID: "EMP20250001", Name: "A",
		BaseSalary: dec("40000"),
		Allowances: map[string]decimal.Decimal{"transport": dec("2000"), "meal": dec("3000")},
		Deductions: map[string]decimal.Decimal{"advance": dec("1000")},
		Active:     true,
	}
}

func employeeB() *entity.Employee {
	return &entity.Employee{
		ID: "emp-b", CompanyID: testCompanyID, EmployeeID: "EMP20250002", Name: "B",
		BaseSalary: dec("50000"),
		Allowances: map[string]decimal.Decimal{"role": dec("5000")},
		Active:     true,
	}
}

func draftRun() *entity.Payroll {
	return &entity.Payroll{
		ID: "run-1", CompanyID: testCompanyID, Year: 2025, Month: 7,
		Status:        entity.PayrollStatusDraft,
		TotalGrossPay: decimal.Zero,
		TotalNetPay:   decimal.Zero,
	}
}

type fixture struct {
	store   *memStore
	runner  *memTxRunner
	service *apppayroll.CalculationService
}

func newFixture(t *testing.T, insuranceStore *insuranceStoreFake, allowMissing bool, employees ...*entity.Employee) *fixture {
	t.Helper()
	store := newMemStore()
	store.employees = employees
	runner := &memTxRunner{store: store}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	cache := insurance.NewCache(insuranceStore, insurance.DefaultTTL, log)
	service := apppayroll.NewCalculationService(&memEmployeeRepo{store: store}, cache, runner, allowMissing, log)
	return &fixture{store: store, runner: runner, service: service}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCall_PersistsBatchAndTotals(t *testing.T) {
	f := newFixture(t, laborTable(), false, employeeA(), employeeB())
	run := draftRun()
	f.store.payrolls[run.ID] = run

	require.NoError(t, f.service.Call(context.Background(), run))

	items, err := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byEmployee := map[string]*entity.PayrollItem{}
	for _, item := range items {
		byEmployee[item.EmployeeID] = item
	}

	a := byEmployee["emp-a"]
	require.NotNil(t, a)
	assert.True(t, a.GrossPay.Equal(dec("45000")))
	assert.True(t, a.TotalInsurancePremium.Equal(dec("805")))
	assert.True(t, a.NetPay.Equal(dec("43195")))

	b := byEmployee["emp-b"]
	require.NotNil(t, b)
	assert.True(t, b.GrossPay.Equal(dec("55000")))
	assert.True(t, b.NetPay.Equal(dec("54195")))

	assert.True(t, run.TotalGrossPay.Equal(dec("100000")), "got %s", run.TotalGrossPay)
	assert.True(t, run.TotalNetPay.Equal(dec("97390")), "got %s", run.TotalNetPay)
}

func TestCall_IdempotentRerun(t *testing.T) {
	f := newFixture(t, laborTable(), false, employeeA(), employeeB())
	run := draftRun()
	f.store.payrolls[run.ID] = run

	require.NoError(t, f.service.Call(context.Background(), run))
	firstItems, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	firstIDs := map[string]string{}
	for _, item := range firstItems {
		firstIDs[item.EmployeeID] = item.ID
	}

	// 重跑：更新既有明細，不新增
	require.NoError(t, f.service.Call(context.Background(), run))
	secondItems, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	require.Len(t, secondItems, len(firstItems), "re-run must not duplicate line items")
	for _, item := range secondItems {
		assert.Equal(t, firstIDs[item.EmployeeID], item.ID, "re-run updates the same row")
	}
	assert.True(t, run.TotalGrossPay.Equal(dec("100000")))
}

func TestCall_MidBatchFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t, laborTable(), false, employeeA(), employeeB())
	f.runner.failEmployeeID = "emp-b"
	run := draftRun()
	f.store.payrolls[run.ID] = run

	err := f.service.Call(context.Background(), run)
	require.Error(t, err)

	var persistErr *apppayroll.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "EMP20250002", persistErr.EmployeeID, "failure carries the employee context")

	items, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	assert.Empty(t, items, "a mid-batch failure must leave zero persisted line items")
	assert.True(t, f.store.payrolls[run.ID].TotalGrossPay.IsZero(), "totals must stay untouched")
}

func TestCall_EmptyCompany(t *testing.T) {
	f := newFixture(t, laborTable(), false) // no employees
	run := draftRun()
	f.store.payrolls[run.ID] = run

	require.NoError(t, f.service.Call(context.Background(), run))

	items, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	assert.Empty(t, items)
	assert.True(t, run.TotalGrossPay.IsZero())
	assert.True(t, run.TotalNetPay.IsZero())

	// 空批次不可確認
	sm := calc.NewStateMachine()
	assert.False(t, sm.Can(run, calc.EventConfirm, calc.GuardInput{Items: items}))
}

func TestCall_RejectsNonDraftRun(t *testing.T) {
	f := newFixture(t, laborTable(), false, employeeA())
	run := draftRun()
	run.Status = entity.PayrollStatusConfirmed
	f.store.payrolls[run.ID] = run

	err := f.service.Call(context.Background(), run)
	assert.ErrorIs(t, err, domain.ErrPayrollNotEditable)

	items, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	assert.Empty(t, items, "rejected call must not write")
}

func TestCall_NegativeNetPaySurfacedBeforePersist(t *testing.T) {
	broke := employeeA()
	broke.Deductions = map[string]decimal.Decimal{"advance": dec("999999")}
	f := newFixture(t, laborTable(), false, broke)
	run := draftRun()
	f.store.payrolls[run.ID] = run

	err := f.service.Call(context.Background(), run)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNegativeNetPay)

	var negErr *apppayroll.NegativeNetPayError
	require.ErrorAs(t, err, &negErr)
	assert.Equal(t, "EMP20250001", negErr.EmployeeID)

	items, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	assert.Empty(t, items, "negative net pay must block the whole persist")
}

func TestCalculateAll_IncludesInactiveEmployees(t *testing.T) {
	resigned := employeeB()
	resigned.Active = false
	f := newFixture(t, laborTable(), false, employeeA(), resigned)
	run := draftRun()

	calcs, err := f.service.CalculateAll(context.Background(), run)
	require.NoError(t, err)
	assert.Len(t, calcs, 2, "離職員工也要納入計算")

	items, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	assert.Empty(t, items, "CalculateAll must not write")
}

func TestCall_LookupUnavailable(t *testing.T) {
	failing := &insuranceStoreFake{err: errors.New("connection refused")}

	t.Run("fails the run by default", func(t *testing.T) {
		f := newFixture(t, failing, false, employeeA())
		run := draftRun()
		f.store.payrolls[run.ID] = run

		err := f.service.Call(context.Background(), run)
		assert.ErrorIs(t, err, domain.ErrLookupUnavailable)
	})

	t.Run("degrades to zero premiums when configured", func(t *testing.T) {
		f := newFixture(t, failing, true, employeeA())
		run := draftRun()
		f.store.payrolls[run.ID] = run

		require.NoError(t, f.service.Call(context.Background(), run))
		items, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
		require.Len(t, items, 1)
		assert.True(t, items[0].TotalInsurancePremium.IsZero())
		assert.True(t, items[0].NetPay.Equal(dec("44000")), "45000 - 1000 - 0")
	})
}

func TestCall_HundredEmployeesUnderTwoSeconds(t *testing.T) {
	employees := make([]*entity.Employee, 0, 100)
	for i := 0; i < 100; i++ {
		e := employeeA()
		e.ID = fmt.Sprintf("emp-%03d", i)
		e.EmployeeID = fmt.Sprintf("EMP2025%04d", i+1)
		employees = append(employees, e)
	}
	f := newFixture(t, laborTable(), false, employees...)
	run := draftRun()
	f.store.payrolls[run.ID] = run

	started := time.Now()
	require.NoError(t, f.service.Call(context.Background(), run))
	elapsed := time.Since(started)

	assert.Less(t, elapsed, 2*time.Second, "100 employees must calculate well under 2s")

	items, _ := (&memItemRepo{store: f.store}).ListByPayroll(run.ID)
	assert.Len(t, items, 100)
}
