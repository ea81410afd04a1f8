package staff

import "time"

const (
	RolePharmacist = "pharmacist"
	RoleCashier    = "cashier"
	RoleAdmin      = "admin"
)

// User maps to the staff_user table. The PIN authorizes till-side
// actions like pharmacist sign-off, separate from API credentials.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	PIN       string    `db:"pin" json:"-"`
	Roles     []string  `db:"roles" json:"roles"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Session states.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// Session maps to the pos_session table. One till shift; the session
// keeps running tallies of regulated sales for the closing report.
type Session struct {
	ID                int64      `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	State             string     `db:"state" json:"state"`
	OpenedByID        int64      `db:"opened_by_id" json:"opened_by_id"`
	PharmacistID      *int64     `db:"pharmacist_id" json:"pharmacist_id,omitempty"`
	PharmacistName    *string    `db:"pharmacist_name" json:"pharmacist_name,omitempty"`
	OpenedAt          time.Time  `db:"opened_at" json:"opened_at"`
	ClosedAt          *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	PrescriptionSales int        `db:"prescription_sales" json:"prescription_sales"`
	ControlledSales   int        `db:"controlled_sales" json:"controlled_sales"`
}
