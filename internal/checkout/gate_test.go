package checkout

import (
	"context"
	"testing"
)

// fakePrompter scripts the operator's answers and records what the
// gate showed.
type fakePrompter struct {
	confirmAnswer bool
	confirms      []string
	infos         []string
}

func (p *fakePrompter) Confirm(_ context.Context, title, _ string) (bool, error) {
	p.confirms = append(p.confirms, title)
	return p.confirmAnswer, nil
}

func (p *fakePrompter) Info(_ context.Context, title, _ string) error {
	p.infos = append(p.infos, title)
	return nil
}

// fakeStaff resolves one scripted pharmacist.
type fakeStaff struct {
	pin        string
	pharmacist *Pharmacist
	lookups    int
}

func (s *fakeStaff) FindPharmacistByPIN(_ context.Context, pin string) (*Pharmacist, error) {
	s.lookups++
	if pin == s.pin {
		return s.pharmacist, nil
	}
	return nil, nil
}

// scriptedPINs feeds PIN entries in order; an empty list dismisses.
type scriptedPINs struct {
	pins []string
}

func (s *scriptedPINs) PromptPIN(_ context.Context, _ string) (string, bool, error) {
	if len(s.pins) == 0 {
		return "", false, nil
	}
	pin := s.pins[0]
	s.pins = s.pins[1:]
	return pin, true, nil
}

type recordingApproval struct {
	ran   bool
	inner ApprovalRunner
}

func (r *recordingApproval) Run(ctx context.Context, o *Order) error {
	r.ran = true
	if r.inner != nil {
		return r.inner.Run(ctx, o)
	}
	return nil
}

func rxOrder() *Order {
	return &Order{
		UID:   "00001-001-0001",
		Lines: []Line{{ProductID: 9, ProductName: "Amoxicillin 500mg", Quantity: 1, RequiresPrescription: true}},
	}
}

func runGate(t *testing.T, o *Order, prompter *fakePrompter, approval ApprovalRunner, settings Settings) (Decision, bool) {
	t.Helper()
	paid := false
	gate := NewGate(prompter, approval, settings, func(context.Context, *Order) error {
		paid = true
		return nil
	})
	d, err := gate.Run(context.Background(), o)
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	return d, paid
}

func TestGate_BlocksAtMissingPrescription(t *testing.T) {
	prompter := &fakePrompter{confirmAnswer: true}
	approval := &recordingApproval{}

	d, paid := runGate(t, rxOrder(), prompter, approval, Settings{RequirePrescriptionValidation: true, BlockExpiredProducts: true})

	if d.Allowed || d.Code != BlockMissingPrescription {
		t.Errorf("decision = %+v, want %s block", d, BlockMissingPrescription)
	}
	if len(prompter.infos) != 1 {
		t.Errorf("expected one informational message, got %v", prompter.infos)
	}
	if len(prompter.confirms) != 0 {
		t.Error("approval step must not run after a prescription block")
	}
	if approval.ran {
		t.Error("approval flow must not run after a prescription block")
	}
	if paid {
		t.Error("payment must not start")
	}
}

func TestGate_ApprovalDeclinedBlocksSilently(t *testing.T) {
	o := rxOrder()
	o.SetPatient(&PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"})
	before, _ := o.Export()

	prompter := &fakePrompter{confirmAnswer: false}
	approval := &recordingApproval{}

	d, paid := runGate(t, o, prompter, approval, Settings{RequirePrescriptionValidation: true})

	if d.Allowed || d.Code != BlockApprovalDeclined || !d.Silent {
		t.Errorf("decision = %+v, want silent %s block", d, BlockApprovalDeclined)
	}
	if approval.ran {
		t.Error("declined confirmation must not start the approval flow")
	}
	if paid {
		t.Error("payment must not start")
	}
	after, _ := o.Export()
	if string(before) != string(after) {
		t.Error("declined approval must leave the order unchanged")
	}
}

func TestGate_ApprovalCancelledBlocks(t *testing.T) {
	o := rxOrder()
	o.SetPatient(&PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"})

	prompter := &fakePrompter{confirmAnswer: true}
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Dr. A"}}
	approval := NewInteractiveApproval(staff, &scriptedPINs{}) // dismisses immediately

	d, paid := runGate(t, o, prompter, approval, Settings{RequirePrescriptionValidation: true})

	if d.Allowed || d.Code != BlockApprovalMissing {
		t.Errorf("decision = %+v, want %s block", d, BlockApprovalMissing)
	}
	if o.ApprovedByPharmacist || o.PharmacistID != nil {
		t.Error("cancelled approval must leave the annotation untouched")
	}
	if paid {
		t.Error("payment must not start")
	}
}

func TestGate_SuccessfulFlowEndToEnd(t *testing.T) {
	o := rxOrder()
	o.SetPatient(&PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"})

	prompter := &fakePrompter{confirmAnswer: true}
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Dr. A"}}
	approval := NewInteractiveApproval(staff, &scriptedPINs{pins: []string{"4321"}})

	d, paid := runGate(t, o, prompter, approval, Settings{RequirePrescriptionValidation: true, BlockExpiredProducts: true})

	if !d.Allowed {
		t.Fatalf("decision = %+v, want allowed", d)
	}
	if !o.ApprovedByPharmacist {
		t.Error("expected approved flag set")
	}
	if o.PharmacistID == nil || *o.PharmacistID != 7 {
		t.Errorf("pharmacist id = %v, want 7", o.PharmacistID)
	}
	if !paid {
		t.Error("payment flow should have been invoked")
	}
}

func TestGate_WrongThenRightPIN(t *testing.T) {
	o := rxOrder()
	o.SetPatient(&PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"})

	prompter := &fakePrompter{confirmAnswer: true}
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Dr. A"}}
	approval := NewInteractiveApproval(staff, &scriptedPINs{pins: []string{"0000", "4321"}})

	d, paid := runGate(t, o, prompter, approval, Settings{RequirePrescriptionValidation: true})

	if !d.Allowed || !paid {
		t.Fatalf("decision = %+v paid=%v, want allowed flow", d, paid)
	}
	if staff.lookups != 2 {
		t.Errorf("lookups = %d, want 2", staff.lookups)
	}
}

func TestGate_ExpiredBlockToggle(t *testing.T) {
	build := func() *Order {
		o := &Order{
			UID:   "00001-001-0002",
			Lines: []Line{{ProductID: 5, ProductName: "Cough Syrup", Quantity: 1, LotExpired: true}},
		}
		return o
	}

	prompter := &fakePrompter{}
	d, paid := runGate(t, build(), prompter, &recordingApproval{}, Settings{RequirePrescriptionValidation: true, BlockExpiredProducts: true})
	if d.Allowed || d.Code != BlockExpiredProducts {
		t.Errorf("decision = %+v, want %s block", d, BlockExpiredProducts)
	}
	if paid {
		t.Error("payment must not start with the flag on")
	}

	d, paid = runGate(t, build(), &fakePrompter{}, &recordingApproval{}, Settings{RequirePrescriptionValidation: true})
	if !d.Allowed || !paid {
		t.Errorf("decision = %+v paid=%v, want pass with the flag off", d, paid)
	}
}

func TestGate_ApprovedOrderSkipsApprovalStep(t *testing.T) {
	o := rxOrder()
	o.SetPatient(&PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"})
	o.Approve(7)

	prompter := &fakePrompter{}
	approval := &recordingApproval{}
	d, paid := runGate(t, o, prompter, approval, Settings{RequirePrescriptionValidation: true})

	if !d.Allowed || !paid {
		t.Fatalf("decision = %+v paid=%v, want pass", d, paid)
	}
	if len(prompter.confirms) != 0 || approval.ran {
		t.Error("already-approved order should skip the approval step")
	}
}

func TestGate_PrescriptionLinkedSkipsStep1(t *testing.T) {
	o := rxOrder()
	o.SetPrescription(&PrescriptionInfo{ID: 14, Patient: &PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"}})
	o.Approve(7)

	d, paid := runGate(t, o, &fakePrompter{}, &recordingApproval{}, Settings{RequirePrescriptionValidation: true, BlockExpiredProducts: true})
	if !d.Allowed || !paid {
		t.Errorf("decision = %+v paid=%v, want pass", d, paid)
	}
}

func TestGate_ValidationDisabledSkipsPrescriptionCheck(t *testing.T) {
	prompter := &fakePrompter{confirmAnswer: false}
	approval := &recordingApproval{}

	d, paid := runGate(t, rxOrder(), prompter, approval, Settings{})

	if d.Code == BlockMissingPrescription {
		t.Fatalf("decision = %+v, prescription check should be off", d)
	}
	if len(prompter.infos) != 0 {
		t.Errorf("unexpected informational messages: %v", prompter.infos)
	}
	if d.Allowed || d.Code != BlockApprovalDeclined {
		t.Errorf("decision = %+v, want silent %s block", d, BlockApprovalDeclined)
	}
	if paid {
		t.Error("payment must not run")
	}
}
