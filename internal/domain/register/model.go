package register

import "time"

// Entry maps to the controlled_register table. One row per controlled
// drug dispensed. Patient and prescriber details are copied in at
// dispense time so the register stays accurate even if the source
// records are later edited.
type Entry struct {
	ID                 int64     `db:"id" json:"id"`
	Date               time.Time `db:"date" json:"date"`
	OrderUID           string    `db:"order_uid" json:"order_uid"`
	ProductID          int64     `db:"product_id" json:"product_id"`
	ProductName        string    `db:"product_name" json:"product_name"`
	Schedule           string    `db:"schedule" json:"schedule"`
	Quantity           float64   `db:"quantity" json:"quantity"`
	PatientName        string    `db:"patient_name" json:"patient_name"`
	PatientIDNumber    *string   `db:"patient_id_number" json:"patient_id_number,omitempty"`
	PatientAddress     *string   `db:"patient_address" json:"patient_address,omitempty"`
	PrescriberName     *string   `db:"prescriber_name" json:"prescriber_name,omitempty"`
	PrescriberLicense  *string   `db:"prescriber_license" json:"prescriber_license,omitempty"`
	PrescriptionNumber *string   `db:"prescription_number" json:"prescription_number,omitempty"`
	PharmacistID       int64     `db:"pharmacist_id" json:"pharmacist_id"`
	PharmacistName     string    `db:"pharmacist_name" json:"pharmacist_name"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
