package payroll

import (
	"errors"
	"fmt"
	"time"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
)

// Events the payroll lifecycle accepts.
type Event string

const (
	EventConfirm    Event = "confirm"
	EventMarkAsPaid Event = "mark_as_paid"
)

// Guard failure reasons for confirm.
var (
	// ErrNoLineItems 沒有任何薪資明細，不可確認
	ErrNoLineItems = errors.New("payroll has no line items")
	// ErrUncomputedLineItems 有明細尚未計算實發薪資
	ErrUncomputedLineItems = errors.New("payroll has uncomputed line items")
)

// InvalidTransitionError reports a disallowed lifecycle transition, including
// the guard failure that blocked it (Reason is nil for wrong-state attempts).
type InvalidTransitionError struct {
	From   string
	Event  Event
	Reason error
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("cannot %s payroll in status %q: %v", e.Event, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot %s payroll in status %q", e.Event, e.From)
}

func (e *InvalidTransitionError) Unwrap() []error {
	if e.Reason != nil {
		return []error{domain.ErrInvalidTransition, e.Reason}
	}
	return []error{domain.ErrInvalidTransition}
}

// GuardInput carries the run's line items for guard evaluation. The state
// machine itself never reads storage.
type GuardInput struct {
	Items []*entity.PayrollItem
}

type transition struct {
	from  string
	to    string
	guard func(p *entity.Payroll, in GuardInput) error
	after func(p *entity.Payroll, now time.Time)
}

// StateMachine 薪資批次狀態機：draft → confirmed → paid，不可逆、不可跳關。
type StateMachine struct {
	transitions map[Event]transition
	now         func() time.Time
}

// NewStateMachine builds the machine with its fixed transition table.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		now: time.Now,
		transitions: map[Event]transition{
			EventConfirm: {
				from:  entity.PayrollStatusDraft,
				to:    entity.PayrollStatusConfirmed,
				guard: confirmGuard,
				after: func(p *entity.Payroll, now time.Time) { p.ConfirmedAt = &now },
			},
			EventMarkAsPaid: {
				from: entity.PayrollStatusConfirmed,
				to:   entity.PayrollStatusPaid,
				after: func(p *entity.Payroll, now time.Time) { p.PaidAt = &now },
			},
		},
	}
}

// confirmGuard：至少一筆明細，且所有明細都已算出實發薪資。
func confirmGuard(_ *entity.Payroll, in GuardInput) error {
	if len(in.Items) == 0 {
		return ErrNoLineItems
	}
	for _, item := range in.Items {
		if item.NetPay == nil {
			return ErrUncomputedLineItems
		}
	}
	return nil
}

// Can reports whether firing event would succeed, without mutating the payroll.
func (m *StateMachine) Can(p *entity.Payroll, event Event, in GuardInput) bool {
	t, ok := m.transitions[event]
	if !ok || p.Status != t.from {
		return false
	}
	if t.guard != nil && t.guard(p, in) != nil {
		return false
	}
	return true
}

// Fire applies event to the payroll, mutating status and timestamps in memory.
// The caller persists the result. Disallowed attempts return
// *InvalidTransitionError instead of silently no-op-ing.
func (m *StateMachine) Fire(p *entity.Payroll, event Event, in GuardInput) error {
	t, ok := m.transitions[event]
	if !ok || p.Status != t.from {
		return &InvalidTransitionError{From: p.Status, Event: event}
	}
	if t.guard != nil {
		if err := t.guard(p, in); err != nil {
			return &InvalidTransitionError{From: p.Status, Event: event, Reason: err}
		}
	}
	p.Status = t.to
	if t.after != nil {
		t.after(p, m.now())
	}
	return nil
}
