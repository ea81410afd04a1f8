package prescriber

import "time"

// Prescriber maps to the prescriber table (doctors and clinical
// officers whose prescriptions the pharmacy accepts).
type Prescriber struct {
	ID             int64      `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	LicenseNumber  string     `db:"license_number" json:"license_number"`
	LicenseExpiry  *time.Time `db:"license_expiry" json:"license_expiry,omitempty"`
	Specialization *string    `db:"specialization" json:"specialization,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Facility       *string    `db:"facility" json:"facility,omitempty"`
	Verified       bool       `db:"verified" json:"verified"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// LicenseValid reports whether the practice license is current. A
// missing expiry date is treated as current.
func (p *Prescriber) LicenseValid(at time.Time) bool {
	if p.LicenseExpiry == nil {
		return true
	}
	return !p.LicenseExpiry.Before(at)
}
