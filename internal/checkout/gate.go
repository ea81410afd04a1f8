package checkout

import "context"

// Block codes returned by the gate. Blocks are expected
// business-rule outcomes, not errors.
const (
	BlockMissingPrescription = "missing_prescription"
	BlockApprovalDeclined    = "approval_declined"
	BlockApprovalMissing     = "approval_missing"
	BlockExpiredProducts     = "expired_products"
)

// Decision is the gate's verdict on one checkout attempt.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	// Silent blocks show no message; the operator chose to stop.
	Silent bool `json:"silent,omitempty"`
}

func proceed() Decision { return Decision{Allowed: true} }

func block(code, message string) Decision {
	return Decision{Code: code, Message: message}
}

func blockSilent(code string) Decision {
	return Decision{Code: code, Silent: true}
}

// Prompter asks the operator yes/no questions and shows blocking
// messages. The terminal front end supplies the implementation.
type Prompter interface {
	Confirm(ctx context.Context, title, body string) (bool, error)
	Info(ctx context.Context, title, body string) error
}

// ApprovalRunner drives the pharmacist approval flow to completion.
// Run returns once the flow resolves; a cancelled flow leaves the
// order untouched and returns without error.
type ApprovalRunner interface {
	Run(ctx context.Context, o *Order) error
}

// PaymentFunc is the standard payment flow the gate hands control to
// once every check passes. The gate never inspects its outcome.
type PaymentFunc func(ctx context.Context, o *Order) error

// Settings are the deployment switches the gate reads.
type Settings struct {
	RequirePrescriptionValidation bool
	BlockExpiredProducts          bool
}

// Gate sequences the pre-payment checks. Each check short-circuits:
// a later check never runs when an earlier one blocks.
type Gate struct {
	prompter Prompter
	approval ApprovalRunner
	settings Settings
	pay      PaymentFunc
}

func NewGate(prompter Prompter, approval ApprovalRunner, settings Settings, pay PaymentFunc) *Gate {
	return &Gate{prompter: prompter, approval: approval, settings: settings, pay: pay}
}

// Run decides whether payment may begin for the order, driving the
// approval flow when needed. On pass it invokes the payment flow and
// returns an allowed decision.
func (g *Gate) Run(ctx context.Context, o *Order) (Decision, error) {
	// 1. Prescription on file. No dialog is offered here; patient and
	// prescription linkage happens through its own flow.
	if g.settings.RequirePrescriptionValidation && o.HasPrescriptionItems() &&
		o.PrescriptionID == nil && o.PatientID == nil {
		msg := "This order contains prescription items. Link a patient or prescription before payment."
		if err := g.prompter.Info(ctx, "Prescription Required", msg); err != nil {
			return Decision{}, err
		}
		return block(BlockMissingPrescription, msg), nil
	}

	// 2. Pharmacist approval.
	if o.RequiresPharmacistApproval() && !o.ApprovedByPharmacist {
		ok, err := g.prompter.Confirm(ctx, "Pharmacist Approval Required",
			"This order needs pharmacist approval. Request approval now?")
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			return blockSilent(BlockApprovalDeclined), nil
		}
		if err := g.approval.Run(ctx, o); err != nil {
			return Decision{}, err
		}
		if !o.ApprovedByPharmacist {
			return blockSilent(BlockApprovalMissing), nil
		}
	}

	// 3. Expired lots.
	if g.settings.BlockExpiredProducts && o.HasExpiredLots() {
		msg := "One or more items come from an expired lot and cannot be sold."
		if err := g.prompter.Info(ctx, "Expired Products", msg); err != nil {
			return Decision{}, err
		}
		return block(BlockExpiredProducts, msg), nil
	}

	if err := g.pay(ctx, o); err != nil {
		return Decision{}, err
	}
	return proceed(), nil
}
