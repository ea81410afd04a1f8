package inventory

import "time"

// Expiry report bands, tightest first.
const (
	BandExpired  = "EXPIRED"
	BandCritical = "CRITICAL" // 30 days or less
	BandWarning  = "WARNING"  // 31 to 60 days
	BandAlert    = "ALERT"    // beyond 60 days, within the report window
)

// Lot maps to the stock_lot table. Each receipt of a product gets its
// own lot with the manufacturer's batch number and expiry date.
type Lot struct {
	ID                int64      `db:"id" json:"id"`
	ProductID         int64      `db:"product_id" json:"product_id"`
	ProductName       string     `db:"product_name" json:"product_name"`
	LotNumber         string     `db:"lot_number" json:"lot_number"`
	Quantity          float64    `db:"quantity" json:"quantity"`
	ExpiryDate        *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	ManufacturingDate *time.Time `db:"manufacturing_date" json:"manufacturing_date,omitempty"`
	ReceivedDate      time.Time  `db:"received_date" json:"received_date"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// IsExpired reports whether the lot's expiry date has passed. A lot
// with no expiry date never expires.
func (l *Lot) IsExpired(at time.Time) bool {
	if l.ExpiryDate == nil {
		return false
	}
	return l.ExpiryDate.Before(at)
}

// IsNearExpiry reports whether the lot expires within the given
// number of days but has not yet expired.
func (l *Lot) IsNearExpiry(at time.Time, days int) bool {
	if l.ExpiryDate == nil || l.IsExpired(at) {
		return false
	}
	return !l.ExpiryDate.After(at.AddDate(0, 0, days))
}

// DaysToExpiry returns whole days until expiry, negative when the lot
// is already expired. Returns false when the lot has no expiry date.
func (l *Lot) DaysToExpiry(at time.Time) (int, bool) {
	if l.ExpiryDate == nil {
		return 0, false
	}
	return int(l.ExpiryDate.Sub(at).Hours() / 24), true
}

// Band places the lot in an expiry report band.
func (l *Lot) Band(at time.Time) string {
	days, ok := l.DaysToExpiry(at)
	if !ok {
		return ""
	}
	switch {
	case days < 0 || l.IsExpired(at):
		return BandExpired
	case days <= 30:
		return BandCritical
	case days <= 60:
		return BandWarning
	default:
		return BandAlert
	}
}

// ExpiryReportLine is one row of the expiry report.
type ExpiryReportLine struct {
	Lot          *Lot   `json:"lot"`
	Band         string `json:"band"`
	DaysToExpiry int    `json:"days_to_expiry"`
}
