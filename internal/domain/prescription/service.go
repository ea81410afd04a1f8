package prescription

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	prescriptions Repository
}

func NewService(prescriptions Repository) *Service {
	return &Service{prescriptions: prescriptions}
}

// Create records a new prescription in draft. The validity window is
// derived from the prescription date, not the entry date.
func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.PatientID == 0 {
		return fmt.Errorf("patient_id is required")
	}
	if p.PrescriberID == 0 {
		return fmt.Errorf("prescriber_id is required")
	}
	if len(p.Lines) == 0 {
		return fmt.Errorf("at least one line is required")
	}
	for i, l := range p.Lines {
		if l.ProductID == 0 {
			return fmt.Errorf("line %d: product_id is required", i+1)
		}
		if l.QuantityPrescribed <= 0 {
			return fmt.Errorf("line %d: quantity_prescribed must be positive", i+1)
		}
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	p.ValidUntil = p.Date.AddDate(0, 0, ValidityDays)
	p.State = StateDraft
	if p.Number == "" {
		p.Number = fmt.Sprintf("RX/%s", p.Date.Format("20060102150405"))
	}
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Prescription, error) {
	return s.prescriptions.GetByNumber(ctx, number)
}

// Confirm moves a draft prescription into the fillable pipeline.
func (s *Service) Confirm(ctx context.Context, id int64) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.State != StateDraft {
		return nil, fmt.Errorf("only draft prescriptions can be confirmed, state is %s", p.State)
	}
	p.State = StateConfirmed
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Verify records the pharmacist's clinical check of the prescription.
func (s *Service) Verify(ctx context.Context, id int64, pharmacist string) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.State == StateCancelled || p.State == StateExpired {
		return nil, fmt.Errorf("cannot verify a %s prescription", p.State)
	}
	now := time.Now()
	p.Verified = true
	p.VerifiedBy = &pharmacist
	p.VerifiedAt = &now
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Cancel(ctx context.Context, id int64) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.State == StateDispensed {
		return nil, fmt.Errorf("cannot cancel a dispensed prescription")
	}
	p.State = StateCancelled
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CheckDispensable reloads the prescription and reports whether it
// can back a sale right now. A prescription found past its validity
// window is moved to expired as a side effect.
func (s *Service) CheckDispensable(ctx context.Context, id int64) (*Prescription, bool, string, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, false, "", err
	}
	now := time.Now()
	if p.State != StateExpired && p.State != StateCancelled && !p.IsValid(now) {
		p.State = StateExpired
		if err := s.prescriptions.Update(ctx, p); err != nil {
			return nil, false, "", err
		}
	}
	ok, reason := p.Dispensable(now)
	return p, ok, reason, nil
}

// DispensedQuantity is one line's worth of an actual dispense.
type DispensedQuantity struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// Dispense records quantities handed over against the prescription
// and moves it to partially_dispensed or dispensed.
func (s *Service) Dispense(ctx context.Context, id int64, by string, quantities []DispensedQuantity) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, reason := p.Dispensable(time.Now())
	if !ok {
		return nil, fmt.Errorf("cannot dispense: %s", reason)
	}

	byProduct := make(map[int64]*Line, len(p.Lines))
	for _, l := range p.Lines {
		byProduct[l.ProductID] = l
	}
	for _, q := range quantities {
		l, found := byProduct[q.ProductID]
		if !found {
			return nil, fmt.Errorf("product %d is not on the prescription", q.ProductID)
		}
		if q.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: quantity must be positive", q.ProductID)
		}
		if q.Quantity > l.Remaining() {
			return nil, fmt.Errorf("product %d: %v exceeds remaining %v", q.ProductID, q.Quantity, l.Remaining())
		}
		l.QuantityDispensed += q.Quantity
		if err := s.prescriptions.UpdateLine(ctx, l); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	p.DispensedBy = &by
	p.DispensedAt = &now
	if p.FullyDispensed() {
		p.State = StateDispensed
	} else {
		p.State = StatePartiallyDispensed
	}
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) List(ctx context.Context, state string, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.List(ctx, state, limit, offset)
}
