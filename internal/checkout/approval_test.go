package checkout

import (
	"context"
	"errors"
	"testing"
)

func TestApprovalFlow_EmptyPIN(t *testing.T) {
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Dr. A"}}
	o := &Order{}
	flow := NewApprovalFlow(staff, o)

	_, err := flow.Submit(context.Background(), "")
	if !errors.Is(err, ErrPINRequired) {
		t.Errorf("err = %v, want ErrPINRequired", err)
	}
	if flow.State() != ApprovalAwaitingPIN {
		t.Errorf("state = %s, flow should stay open", flow.State())
	}
	if staff.lookups != 0 {
		t.Error("empty PIN must not hit the directory")
	}
}

func TestApprovalFlow_InvalidPIN(t *testing.T) {
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Dr. A"}}
	o := &Order{}
	flow := NewApprovalFlow(staff, o)

	_, err := flow.Submit(context.Background(), "9999")
	if !errors.Is(err, ErrInvalidPIN) {
		t.Errorf("err = %v, want ErrInvalidPIN", err)
	}
	if flow.State() != ApprovalAwaitingPIN {
		t.Errorf("state = %s, flow should stay open", flow.State())
	}
	if o.ApprovedByPharmacist || o.PharmacistID != nil {
		t.Error("failed attempt must not mutate the order")
	}
}

func TestApprovalFlow_Match(t *testing.T) {
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Dr. A"}}
	o := &Order{}
	flow := NewApprovalFlow(staff, o)

	ph, err := flow.Submit(context.Background(), "4321")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ph.ID != 7 || ph.Name != "Dr. A" {
		t.Errorf("pharmacist = %+v", ph)
	}
	if flow.State() != ApprovalApproved {
		t.Errorf("state = %s, want approved", flow.State())
	}
	if !o.ApprovedByPharmacist || o.PharmacistID == nil || *o.PharmacistID != 7 {
		t.Errorf("order not approved: %+v", o)
	}

	if _, err := flow.Submit(context.Background(), "4321"); err == nil {
		t.Error("resolved flow must not accept another submit")
	}
}

func TestApprovalFlow_Cancel(t *testing.T) {
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Dr. A"}}
	o := &Order{}
	flow := NewApprovalFlow(staff, o)

	flow.Cancel()
	if flow.State() != ApprovalCancelled {
		t.Errorf("state = %s, want cancelled", flow.State())
	}
	if o.ApprovedByPharmacist || o.PharmacistID != nil {
		t.Error("cancel must leave the order untouched")
	}
}

// With role tracking disabled the directory never matches, so every
// attempt reads as an invalid PIN.
func TestApprovalFlow_RolesDisabledNeverMatches(t *testing.T) {
	noMatch := &fakeStaff{pin: "", pharmacist: nil}
	o := &Order{}
	flow := NewApprovalFlow(noMatch, o)

	_, err := flow.Submit(context.Background(), "4321")
	if !errors.Is(err, ErrInvalidPIN) {
		t.Errorf("err = %v, want ErrInvalidPIN", err)
	}
	if o.ApprovedByPharmacist {
		t.Error("order must stay unapproved")
	}
}
