package checkout

import (
	"context"
	"errors"
	"fmt"
)

// Approval flow states.
const (
	ApprovalAwaitingPIN = "awaiting_pin"
	ApprovalVerifying   = "verifying"
	ApprovalApproved    = "approved"
	ApprovalCancelled   = "cancelled"
)

// Validation outcomes that keep the approval flow open.
var (
	ErrPINRequired = errors.New("PIN required")
	ErrInvalidPIN  = errors.New("invalid PIN")
)

// Pharmacist is the resolved approver.
type Pharmacist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StaffDirectory resolves a pharmacist from an exact PIN match.
// A nil result with nil error means no match (wrong PIN, shared PIN,
// or role tracking disabled).
type StaffDirectory interface {
	FindPharmacistByPIN(ctx context.Context, pin string) (*Pharmacist, error)
}

// ApprovalFlow is one pharmacist sign-off attempt for one order. Only
// one flow may be live per order at a time; the flow owns the
// approval fields until it resolves.
type ApprovalFlow struct {
	staff StaffDirectory
	order *Order
	state string
}

func NewApprovalFlow(staff StaffDirectory, order *Order) *ApprovalFlow {
	return &ApprovalFlow{staff: staff, order: order, state: ApprovalAwaitingPIN}
}

func (f *ApprovalFlow) State() string { return f.state }

// Submit verifies the entered PIN. ErrPINRequired and ErrInvalidPIN
// keep the flow open for another attempt; on a match the order is
// approved and the flow resolves with the pharmacist.
func (f *ApprovalFlow) Submit(ctx context.Context, pin string) (*Pharmacist, error) {
	if f.state != ApprovalAwaitingPIN {
		return nil, fmt.Errorf("approval flow already resolved: %s", f.state)
	}
	if pin == "" {
		return nil, ErrPINRequired
	}
	f.state = ApprovalVerifying
	ph, err := f.staff.FindPharmacistByPIN(ctx, pin)
	if err != nil {
		f.state = ApprovalAwaitingPIN
		return nil, err
	}
	if ph == nil {
		f.state = ApprovalAwaitingPIN
		return nil, ErrInvalidPIN
	}
	f.order.Approve(ph.ID)
	f.state = ApprovalApproved
	return ph, nil
}

// Cancel resolves the flow without touching the order.
func (f *ApprovalFlow) Cancel() {
	if f.state == ApprovalAwaitingPIN || f.state == ApprovalVerifying {
		f.state = ApprovalCancelled
	}
}

// PINPrompter collects a PIN from the operator. ok is false when the
// operator dismisses the prompt.
type PINPrompter interface {
	PromptPIN(ctx context.Context, message string) (pin string, ok bool, err error)
}

// InteractiveApproval runs an ApprovalFlow against the operator,
// re-prompting on empty or unmatched PINs until sign-off or
// dismissal. It satisfies the gate's ApprovalRunner.
type InteractiveApproval struct {
	staff StaffDirectory
	pins  PINPrompter
}

func NewInteractiveApproval(staff StaffDirectory, pins PINPrompter) *InteractiveApproval {
	return &InteractiveApproval{staff: staff, pins: pins}
}

func (a *InteractiveApproval) Run(ctx context.Context, o *Order) error {
	flow := NewApprovalFlow(a.staff, o)
	message := "Enter pharmacist PIN"
	for {
		pin, ok, err := a.pins.PromptPIN(ctx, message)
		if err != nil {
			return err
		}
		if !ok {
			flow.Cancel()
			return nil
		}
		_, err = flow.Submit(ctx, pin)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrPINRequired), errors.Is(err, ErrInvalidPIN):
			message = err.Error()
		default:
			return err
		}
	}
}
