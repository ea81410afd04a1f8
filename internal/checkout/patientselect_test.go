package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeDirectory struct {
	patients map[int64]*PatientInfo
	nextID   int64
	creates  int
	searches int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{patients: make(map[int64]*PatientInfo), nextID: 1}
}

func (d *fakeDirectory) Search(_ context.Context, term string, limit int) ([]*PatientInfo, error) {
	d.searches++
	var result []*PatientInfo
	for _, p := range d.patients {
		if term == "" ||
			strings.Contains(strings.ToLower(p.FullName), strings.ToLower(term)) ||
			strings.Contains(p.Phone, term) {
			result = append(result, p)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (d *fakeDirectory) Create(_ context.Context, p NewPatient) (int64, error) {
	d.creates++
	id := d.nextID
	d.nextID++
	d.patients[id] = &PatientInfo{ID: id, FullName: p.FirstName + " " + p.LastName, Phone: p.Phone}
	return id, nil
}

func (d *fakeDirectory) Get(_ context.Context, id int64) (*PatientInfo, error) {
	p, ok := d.patients[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func validNewPatient() NewPatient {
	return NewPatient{
		FirstName:   "Jane",
		LastName:    "Doe",
		Phone:       "0712345678",
		DateOfBirth: time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestSelectionFlow_CreateValidation(t *testing.T) {
	dir := newFakeDirectory()
	o := &Order{}
	flow := NewPatientSelectionFlow(dir, o)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*NewPatient)
	}{
		{"missing first name", func(p *NewPatient) { p.FirstName = "" }},
		{"missing last name", func(p *NewPatient) { p.LastName = "" }},
		{"missing phone", func(p *NewPatient) { p.Phone = "" }},
		{"missing dob", func(p *NewPatient) { p.DateOfBirth = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validNewPatient()
			tc.mutate(&p)
			if _, err := flow.Create(ctx, p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if dir.creates != 0 {
		t.Errorf("directory create called %d times, want 0", dir.creates)
	}
	if flow.State() != SelectionSearching {
		t.Error("validation failures must keep the flow open")
	}
}

func TestSelectionFlow_CreateStagesStoredRecord(t *testing.T) {
	dir := newFakeDirectory()
	o := &Order{}
	flow := NewPatientSelectionFlow(dir, o)

	created, err := flow.Create(context.Background(), validNewPatient())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dir.creates != 1 {
		t.Errorf("directory create called %d times, want 1", dir.creates)
	}
	if flow.Candidate() == nil || flow.Candidate().ID != created.ID {
		t.Error("created record should be staged as the candidate")
	}
	if o.PatientID != nil {
		t.Error("order must stay unlinked until confirm")
	}
}

func TestSelectionFlow_ConfirmWithoutCandidate(t *testing.T) {
	flow := NewPatientSelectionFlow(newFakeDirectory(), &Order{})

	_, err := flow.Confirm()
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("err = %v, want ErrNoCandidate", err)
	}
	if flow.State() != SelectionSearching {
		t.Error("flow must stay open after a missing-candidate confirm")
	}
}

func TestSelectionFlow_SelectThenConfirm(t *testing.T) {
	dir := newFakeDirectory()
	dir.patients[3] = &PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"}
	o := &Order{}
	flow := NewPatientSelectionFlow(dir, o)

	results, err := flow.Search(context.Background(), "doe")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	flow.Select(results[0])

	got, err := flow.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("resolved patient id = %d, want 3", got.ID)
	}
	if flow.State() != SelectionResolved {
		t.Errorf("state = %s, want resolved", flow.State())
	}
	if o.PatientID == nil || *o.PatientID != 3 || o.PatientName != "J Doe" {
		t.Errorf("order not linked: %+v", o)
	}
}

func TestSelectionFlow_CancelLeavesOrderUnchanged(t *testing.T) {
	dir := newFakeDirectory()
	dir.patients[3] = &PatientInfo{ID: 3, FullName: "J Doe", Phone: "555"}
	o := &Order{}
	flow := NewPatientSelectionFlow(dir, o)

	flow.Select(dir.patients[3])
	flow.Cancel()

	if flow.State() != SelectionCancelled {
		t.Errorf("state = %s, want cancelled", flow.State())
	}
	if o.PatientID != nil {
		t.Error("cancel must leave the order unchanged")
	}
	if _, err := flow.Confirm(); err == nil {
		t.Error("cancelled flow must not confirm")
	}
}
