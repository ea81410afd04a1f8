// Package checkout implements the pre-payment validation workflow:
// the order annotation carrying pharmacy fields, the gate that
// sequences the business-rule checks before payment, and the two
// interactive flows (patient selection, pharmacist approval) the
// gate can hand off to.
package checkout

import "encoding/json"

// PatientInfo is the slice of a patient record the till needs.
type PatientInfo struct {
	ID               int64  `json:"id"`
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	HasInsurance     bool   `json:"has_insurance"`
	InsuranceCompany string `json:"insurance_company,omitempty"`
	InsuranceNumber  string `json:"insurance_number,omitempty"`
}

// PrescriptionInfo is the slice of a prescription record the till
// needs. Patient is set when the prescription is linked to one.
type PrescriptionInfo struct {
	ID      int64        `json:"id"`
	Number  string       `json:"number,omitempty"`
	Patient *PatientInfo `json:"patient,omitempty"`
}

// Line is the read-only view of one order line the gate inspects.
// Quantity and price travel with the line for receipts and events;
// the gate itself only reads the product flags and lot state.
type Line struct {
	ProductID            int64   `json:"product_id"`
	ProductName          string  `json:"product_name"`
	Quantity             float64 `json:"quantity"`
	Price                float64 `json:"price"`
	RequiresPrescription bool    `json:"requires_prescription"`
	Controlled           bool    `json:"controlled"`
	Schedule             string  `json:"schedule,omitempty"`
	LotID                *int64  `json:"lot_id,omitempty"`
	LotExpired           bool    `json:"lot_expired"`
}

// Order is the checkout-side view of an in-flight order: the host
// order's identity and lines plus the pharmacy annotation.
type Order struct {
	UID         string  `json:"uid"`
	SessionID   int64   `json:"session_id"`
	AmountTotal float64 `json:"amount_total"`
	Lines       []Line  `json:"lines"`

	PatientID            *int64  `json:"patient_id"`
	PatientName          string  `json:"patient_name"`
	PatientPhone         string  `json:"patient_phone"`
	PrescriptionID       *int64  `json:"prescription_id"`
	InsuranceClaim       bool    `json:"insurance_claim"`
	InsuranceCompany     string  `json:"insurance_company"`
	InsuranceNumber      string  `json:"insurance_number"`
	InsuranceAmount      float64 `json:"insurance_amount"`
	PatientCopay         float64 `json:"patient_copay"`
	ApprovedByPharmacist bool    `json:"approved_by_pharmacist"`
	PharmacistID         *int64  `json:"pharmacist_id"`
}

// SetPatient links a patient to the order, or clears the link when
// given nil. Insurance company and number are copied from the
// patient's cover; the claim amounts are entered at settlement and
// deliberately not copied here.
func (o *Order) SetPatient(p *PatientInfo) {
	if p == nil {
		o.PatientID = nil
		o.PatientName = ""
		o.PatientPhone = ""
		return
	}
	id := p.ID
	o.PatientID = &id
	o.PatientName = p.FullName
	o.PatientPhone = p.Phone
	if p.HasInsurance {
		o.InsuranceClaim = true
		o.InsuranceCompany = p.InsuranceCompany
		o.InsuranceNumber = p.InsuranceNumber
	}
}

// SetPrescription links a prescription, or clears it when given nil.
// A prescription that carries its patient also links that patient,
// so picking a prescription fills in the patient in one step.
func (o *Order) SetPrescription(p *PrescriptionInfo) {
	if p == nil {
		o.PrescriptionID = nil
		return
	}
	id := p.ID
	o.PrescriptionID = &id
	if p.Patient != nil {
		o.SetPatient(p.Patient)
	}
}

// Approve records the pharmacist sign-off. The approval flow is the
// only caller; the flag is never cleared on a live order.
func (o *Order) Approve(pharmacistID int64) {
	id := pharmacistID
	o.ApprovedByPharmacist = true
	o.PharmacistID = &id
}

// HasPrescriptionItems reports whether any line needs a prescription
// on file before sale.
func (o *Order) HasPrescriptionItems() bool {
	for _, l := range o.Lines {
		if l.RequiresPrescription {
			return true
		}
	}
	return false
}

// RequiresPharmacistApproval reports whether the order needs a
// pharmacist sign-off. Today this matches HasPrescriptionItems, but
// the two gate different actions and are kept separate so either
// rule can tighten independently.
func (o *Order) RequiresPharmacistApproval() bool {
	for _, l := range o.Lines {
		if l.RequiresPrescription {
			return true
		}
	}
	return false
}

// HasControlledDrugs reports whether any line must be entered in the
// controlled drugs register.
func (o *Order) HasControlledDrugs() bool {
	for _, l := range o.Lines {
		if l.Controlled {
			return true
		}
	}
	return false
}

// HasExpiredLots reports whether any line was picked from an expired
// lot.
func (o *Order) HasExpiredLots() bool {
	for _, l := range o.Lines {
		if l.LotExpired {
			return true
		}
	}
	return false
}

// Export serializes the order, annotation included, for the draft
// store and event payloads.
func (o *Order) Export() ([]byte, error) {
	return json.Marshal(o)
}

// Import restores an order previously written by Export. Every field
// Export writes comes back exactly.
func Import(data []byte) (*Order, error) {
	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
