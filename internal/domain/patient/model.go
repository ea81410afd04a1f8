package patient

import (
	"strings"
	"time"
)

// Patient maps to the patient table. Patients are looked up at the
// till by name, phone or national ID before a prescription sale.
type Patient struct {
	ID                    int64      `db:"id" json:"id"`
	FirstName             string     `db:"first_name" json:"first_name"`
	MiddleName            *string    `db:"middle_name" json:"middle_name,omitempty"`
	LastName              string     `db:"last_name" json:"last_name"`
	DateOfBirth           time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Gender                *string    `db:"gender" json:"gender,omitempty"`
	Phone                 string     `db:"phone" json:"phone"`
	Email                 *string    `db:"email" json:"email,omitempty"`
	IDNumber              *string    `db:"id_number" json:"id_number,omitempty"`
	Address               *string    `db:"address" json:"address,omitempty"`
	BloodGroup            *string    `db:"blood_group" json:"blood_group,omitempty"`
	Allergies             *string    `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions     *string    `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	CurrentMedications    *string    `db:"current_medications" json:"current_medications,omitempty"`
	HasInsurance          bool       `db:"has_insurance" json:"has_insurance"`
	InsuranceCompany      *string    `db:"insurance_company" json:"insurance_company,omitempty"`
	InsuranceNumber       *string    `db:"insurance_number" json:"insurance_number,omitempty"`
	InsuranceExpiry       *time.Time `db:"insurance_expiry" json:"insurance_expiry,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	Active                bool       `db:"active" json:"active"`
	Notes                 *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts, skipping an empty middle name.
func (p *Patient) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != nil && *p.MiddleName != "" {
		parts = append(parts, *p.MiddleName)
	}
	parts = append(parts, p.LastName)
	return strings.Join(parts, " ")
}

// Age returns the patient's age in whole years as of now.
func (p *Patient) Age() int {
	return p.AgeAt(time.Now())
}

func (p *Patient) AgeAt(at time.Time) int {
	years := at.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// InsuranceValid reports whether the patient's cover can be claimed
// against today. No expiry date on record means the cover is open.
func (p *Patient) InsuranceValid(at time.Time) bool {
	if !p.HasInsurance {
		return false
	}
	if p.InsuranceExpiry == nil {
		return true
	}
	return !p.InsuranceExpiry.Before(at)
}
