package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Patient selection flow states.
const (
	SelectionSearching = "searching"
	SelectionResolved  = "resolved"
	SelectionCancelled = "cancelled"
)

// ErrNoCandidate is surfaced when confirm is pressed with nothing
// staged; the flow stays open.
var ErrNoCandidate = errors.New("no patient selected")

// SearchLimit caps directory lookups from the selection flow.
const SearchLimit = 20

// NewPatient carries the fields the selection flow can register a
// walk-in patient with.
type NewPatient struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender,omitempty"`
	IDNumber    string    `json:"id_number,omitempty"`
}

// PatientDirectory is the slice of the patient service the selection
// flow needs.
type PatientDirectory interface {
	// Search matches term against name, phone and national ID as a
	// case-insensitive substring; an empty term lists unfiltered.
	// Implementations cap results at limit.
	Search(ctx context.Context, term string, limit int) ([]*PatientInfo, error)
	Create(ctx context.Context, p NewPatient) (int64, error)
	Get(ctx context.Context, id int64) (*PatientInfo, error)
}

// PatientSelectionFlow lets the operator search for, or register, the
// patient an order is for. The flow stages a candidate and mutates
// the order only on confirm.
type PatientSelectionFlow struct {
	directory PatientDirectory
	order     *Order
	state     string
	candidate *PatientInfo
}

func NewPatientSelectionFlow(directory PatientDirectory, order *Order) *PatientSelectionFlow {
	return &PatientSelectionFlow{directory: directory, order: order, state: SelectionSearching}
}

func (f *PatientSelectionFlow) State() string { return f.state }
func (f *PatientSelectionFlow) Candidate() *PatientInfo { return f.candidate }

// Search runs a directory lookup for the current query.
func (f *PatientSelectionFlow) Search(ctx context.Context, term string) ([]*PatientInfo, error) {
	if f.state != SelectionSearching {
		return nil, fmt.Errorf("selection flow already resolved: %s", f.state)
	}
	return f.directory.Search(ctx, strings.TrimSpace(term), SearchLimit)
}

// Select stages a candidate without resolving the flow.
func (f *PatientSelectionFlow) Select(p *PatientInfo) {
	if f.state == SelectionSearching {
		f.candidate = p
	}
}

// Create registers a walk-in patient and stages the stored record.
// Validation failures surface before the directory is called and
// keep the flow open.
func (f *PatientSelectionFlow) Create(ctx context.Context, p NewPatient) (*PatientInfo, error) {
	if f.state != SelectionSearching {
		return nil, fmt.Errorf("selection flow already resolved: %s", f.state)
	}
	var missing []string
	if strings.TrimSpace(p.FirstName) == "" {
		missing = append(missing, "first name")
	}
	if strings.TrimSpace(p.LastName) == "" {
		missing = append(missing, "last name")
	}
	if strings.TrimSpace(p.Phone) == "" {
		missing = append(missing, "phone")
	}
	if p.DateOfBirth.IsZero() {
		missing = append(missing, "date of birth")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required: %s", strings.Join(missing, ", "))
	}
	id, err := f.directory.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	stored, err := f.directory.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.candidate = stored
	return stored, nil
}

// Confirm resolves the flow with the staged candidate, linking it to
// the order. With nothing staged it surfaces ErrNoCandidate and the
// flow stays open.
func (f *PatientSelectionFlow) Confirm() (*PatientInfo, error) {
	if f.state != SelectionSearching {
		return nil, fmt.Errorf("selection flow already resolved: %s", f.state)
	}
	if f.candidate == nil {
		return nil, ErrNoCandidate
	}
	f.order.SetPatient(f.candidate)
	f.state = SelectionResolved
	return f.candidate, nil
}

// Cancel resolves the flow with the order unchanged.
func (f *PatientSelectionFlow) Cancel() {
	if f.state == SelectionSearching {
		f.state = SelectionCancelled
	}
}
