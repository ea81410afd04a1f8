package prescription

import "time"

// Prescription states.
const (
	StateDraft              = "draft"
	StateConfirmed          = "confirmed"
	StatePartiallyDispensed = "partially_dispensed"
	StateDispensed          = "dispensed"
	StateExpired            = "expired"
	StateCancelled          = "cancelled"
)

// ValidityDays is how long a prescription can be filled after the
// date it was written.
const ValidityDays = 180

// Prescription maps to the prescription table.
type Prescription struct {
	ID             int64      `db:"id" json:"id"`
	Number         string     `db:"number" json:"number"`
	PatientID      int64      `db:"patient_id" json:"patient_id"`
	PatientName    string     `db:"patient_name" json:"patient_name"`
	PrescriberID   int64      `db:"prescriber_id" json:"prescriber_id"`
	PrescriberName string     `db:"prescriber_name" json:"prescriber_name"`
	Date           time.Time  `db:"date" json:"date"`
	ValidUntil     time.Time  `db:"valid_until" json:"valid_until"`
	State          string     `db:"state" json:"state"`
	Diagnosis      *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	Verified       bool       `db:"verified" json:"verified"`
	VerifiedBy     *string    `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt     *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	DispensedBy    *string    `db:"dispensed_by" json:"dispensed_by,omitempty"`
	DispensedAt    *time.Time `db:"dispensed_at" json:"dispensed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	Lines          []*Line    `json:"lines,omitempty"`
}

// Line maps to the prescription_line table.
type Line struct {
	ID                 int64   `db:"id" json:"id"`
	PrescriptionID     int64   `db:"prescription_id" json:"prescription_id"`
	ProductID          int64   `db:"product_id" json:"product_id"`
	ProductName        string  `db:"product_name" json:"product_name"`
	Dosage             *string `db:"dosage" json:"dosage,omitempty"`
	Frequency          *string `db:"frequency" json:"frequency,omitempty"`
	DurationDays       *int    `db:"duration_days" json:"duration_days,omitempty"`
	QuantityPrescribed float64 `db:"quantity_prescribed" json:"quantity_prescribed"`
	QuantityDispensed  float64 `db:"quantity_dispensed" json:"quantity_dispensed"`
}

// Remaining is the quantity still owed against the line.
func (l *Line) Remaining() float64 {
	rem := l.QuantityPrescribed - l.QuantityDispensed
	if rem < 0 {
		return 0
	}
	return rem
}

func (l *Line) FullyDispensed() bool {
	return l.QuantityDispensed >= l.QuantityPrescribed
}

// IsValid reports whether the prescription can still be filled: it
// must not be past its validity window.
func (p *Prescription) IsValid(at time.Time) bool {
	return !p.ValidUntil.Before(at)
}

// Dispensable reports whether the prescription can be dispensed
// against right now, with the blocking reason when it cannot.
func (p *Prescription) Dispensable(at time.Time) (bool, string) {
	switch p.State {
	case StateCancelled:
		return false, "prescription is cancelled"
	case StateExpired:
		return false, "prescription is expired"
	case StateDispensed:
		return false, "prescription is fully dispensed"
	case StateDraft:
		return false, "prescription is not confirmed"
	}
	if !p.IsValid(at) {
		return false, "prescription validity window has passed"
	}
	if !p.Verified {
		return false, "prescription has not been verified by a pharmacist"
	}
	return true, ""
}

// FullyDispensed reports whether every line is exhausted.
func (p *Prescription) FullyDispensed() bool {
	if len(p.Lines) == 0 {
		return false
	}
	for _, l := range p.Lines {
		if !l.FullyDispensed() {
			return false
		}
	}
	return true
}
