package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
)

func draftPayroll() *entity.Payroll {
	return &entity.Payroll{ID: "p1", CompanyID: "c1", Year: 2025, Month: 7, Status: entity.PayrollStatusDraft}
}

func computedItems(n int) []*entity.PayrollItem {
	items := make([]*entity.PayrollItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, &entity.PayrollItem{
			PayrollID: "p1",
			GrossPay:  decPtr("45000"),
			NetPay:    decPtr("43195"),
		})
	}
	return items
}

func TestConfirm_FromDraftWithComputedItems(t *testing.T) {
	sm := payroll.NewStateMachine()
	p := draftPayroll()

	err := sm.Fire(p, payroll.EventConfirm, payroll.GuardInput{Items: computedItems(2)})
	require.NoError(t, err)

	assert.Equal(t, entity.PayrollStatusConfirmed, p.Status)
	require.NotNil(t, p.ConfirmedAt, "confirm 成功必須蓋上 confirmedAt")
	assert.False(t, p.CanEdit(), "確認後不可再編輯")
}

func TestConfirm_RejectedWithoutItems(t *testing.T) {
	sm := payroll.NewStateMachine()
	p := draftPayroll()

	err := sm.Fire(p, payroll.EventConfirm, payroll.GuardInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, err, payroll.ErrNoLineItems)
	assert.Equal(t, entity.PayrollStatusDraft, p.Status, "guard 失敗不可改變狀態")
	assert.Nil(t, p.ConfirmedAt)
}

func TestConfirm_RejectedWithUncomputedItem(t *testing.T) {
	sm := payroll.NewStateMachine()
	p := draftPayroll()
	items := computedItems(2)
	items[1].NetPay = nil // 尚未計算

	err := sm.Fire(p, payroll.EventConfirm, payroll.GuardInput{Items: items})
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrUncomputedLineItems)
	assert.Equal(t, entity.PayrollStatusDraft, p.Status)
}

func TestMarkAsPaid_OnlyFromConfirmed(t *testing.T) {
	sm := payroll.NewStateMachine()
	p := draftPayroll()

	// draft → paid is not a legal transition.
	err := sm.Fire(p, payroll.EventMarkAsPaid, payroll.GuardInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, sm.Fire(p, payroll.EventConfirm, payroll.GuardInput{Items: computedItems(1)}))
	require.NoError(t, sm.Fire(p, payroll.EventMarkAsPaid, payroll.GuardInput{}))

	assert.Equal(t, entity.PayrollStatusPaid, p.Status)
	require.NotNil(t, p.PaidAt)
}

func TestPaidRun_CannotBeReconfirmed(t *testing.T) {
	sm := payroll.NewStateMachine()
	p := draftPayroll()
	items := computedItems(1)
	require.NoError(t, sm.Fire(p, payroll.EventConfirm, payroll.GuardInput{Items: items}))
	require.NoError(t, sm.Fire(p, payroll.EventMarkAsPaid, payroll.GuardInput{}))

	err := sm.Fire(p, payroll.EventConfirm, payroll.GuardInput{Items: items})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var invalid *payroll.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, entity.PayrollStatusPaid, invalid.From)
	assert.Equal(t, payroll.EventConfirm, invalid.Event)
}

func TestCan_DoesNotMutate(t *testing.T) {
	sm := payroll.NewStateMachine()
	p := draftPayroll()

	assert.False(t, sm.Can(p, payroll.EventConfirm, payroll.GuardInput{}), "空批次不可確認")
	assert.True(t, sm.Can(p, payroll.EventConfirm, payroll.GuardInput{Items: computedItems(1)}))
	assert.Equal(t, entity.PayrollStatusDraft, p.Status)
	assert.Nil(t, p.ConfirmedAt)

	assert.False(t, sm.Can(p, payroll.EventMarkAsPaid, payroll.GuardInput{}))
}
