package catalog

import "time"

// Drug categories. Category drives whether a sale needs a
// prescription on file.
const (
	CategoryPrescription = "prescription"
	CategoryOTC          = "otc"
	CategoryControlled   = "controlled"
	CategoryPharmacy     = "pharmacy"
	CategoryGeneral      = "general"
)

// Controlled-substance schedules. Scheduled drugs need a pharmacist
// to sign off at the till even when the category alone would not.
const (
	ScheduleOne         = "schedule_1"
	ScheduleTwo         = "schedule_2"
	ScheduleUnscheduled = "unscheduled"
)

// Product maps to the product table (the sellable drug catalog).
type Product struct {
	ID               int64      `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	GenericName      *string    `db:"generic_name" json:"generic_name,omitempty"`
	DrugCategory     string     `db:"drug_category" json:"drug_category"`
	Schedule         string     `db:"schedule" json:"schedule"`
	DosageForm       *string    `db:"dosage_form" json:"dosage_form,omitempty"`
	Strength         *string    `db:"strength" json:"strength,omitempty"`
	ActiveIngredient *string    `db:"active_ingredient" json:"active_ingredient,omitempty"`
	Manufacturer     *string    `db:"manufacturer" json:"manufacturer,omitempty"`
	PPBRegistration  *string    `db:"ppb_registration" json:"ppb_registration,omitempty"`
	PPBRegExpiry     *time.Time `db:"ppb_reg_expiry" json:"ppb_reg_expiry,omitempty"`
	StorageConditions *string   `db:"storage_conditions" json:"storage_conditions,omitempty"`
	ListPrice        float64    `db:"list_price" json:"list_price"`
	Active           bool       `db:"active" json:"active"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// RequiresPrescription reports whether the product cannot be sold
// without a prescription on file.
func (p *Product) RequiresPrescription() bool {
	return p.DrugCategory == CategoryPrescription || p.DrugCategory == CategoryControlled
}

// RequiresPharmacistApproval reports whether a pharmacist must sign
// off on the sale. Everything that needs a prescription does, and so
// does any scheduled drug regardless of category.
func (p *Product) RequiresPharmacistApproval() bool {
	if p.RequiresPrescription() {
		return true
	}
	return p.Schedule == ScheduleOne || p.Schedule == ScheduleTwo
}

// IsControlled reports whether a dispense must be entered in the
// controlled drugs register.
func (p *Product) IsControlled() bool {
	return p.DrugCategory == CategoryControlled
}

// RegistrationValid reports whether the PPB product registration is
// current. Unregistered is treated as valid; registration tracking
// is advisory.
func (p *Product) RegistrationValid(at time.Time) bool {
	if p.PPBRegExpiry == nil {
		return true
	}
	return !p.PPBRegExpiry.Before(at)
}
