package order

import "time"

// Order maps to the pos_order table: a paid order with its pharmacy
// annotation as it stood at payment time.
type Order struct {
	ID                   int64      `db:"id" json:"id"`
	UID                  string     `db:"uid" json:"uid"`
	SessionID            int64      `db:"session_id" json:"session_id"`
	AmountTotal          float64    `db:"amount_total" json:"amount_total"`
	PatientID            *int64     `db:"patient_id" json:"patient_id,omitempty"`
	PatientName          string     `db:"patient_name" json:"patient_name"`
	PatientPhone         string     `db:"patient_phone" json:"patient_phone"`
	PrescriptionID       *int64     `db:"prescription_id" json:"prescription_id,omitempty"`
	InsuranceClaim       bool       `db:"insurance_claim" json:"insurance_claim"`
	InsuranceCompany     string     `db:"insurance_company" json:"insurance_company"`
	InsuranceNumber      string     `db:"insurance_number" json:"insurance_number"`
	InsuranceAmount      float64    `db:"insurance_amount" json:"insurance_amount"`
	PatientCopay         float64    `db:"patient_copay" json:"patient_copay"`
	ApprovedByPharmacist bool       `db:"approved_by_pharmacist" json:"approved_by_pharmacist"`
	PharmacistID         *int64     `db:"pharmacist_id" json:"pharmacist_id,omitempty"`
	PaidAt               time.Time  `db:"paid_at" json:"paid_at"`
	Lines                []*Line    `json:"lines,omitempty"`
}

// Line maps to the pos_order_line table.
type Line struct {
	ID          int64   `db:"id" json:"id"`
	OrderID     int64   `db:"order_id" json:"order_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
	Controlled  bool    `db:"controlled" json:"controlled"`
	Schedule    *string `db:"schedule" json:"schedule,omitempty"`
	LotID       *int64  `db:"lot_id" json:"lot_id,omitempty"`
}
