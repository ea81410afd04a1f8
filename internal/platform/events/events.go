// Package events publishes point-of-sale domain events to Kafka.
// Downstream consumers (reporting, regulatory export, stock sync)
// subscribe to the order stream keyed by order UID so events for one
// order stay ordered within a partition.
package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPaid           = "OrderPaid"
	EventControlledDispensed = "ControlledDrugDispensed"
	EventPrescriptionServed  = "PrescriptionDispensed"
)

// Envelope wraps every published event with routing metadata.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	OrderUID     string          `json:"order_uid,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderPaidPayload struct {
	OrderUID           string      `json:"order_uid"`
	SessionID          int64       `json:"session_id"`
	PatientID          *int64      `json:"patient_id,omitempty"`
	PrescriptionID     *int64      `json:"prescription_id,omitempty"`
	PharmacistApproved bool        `json:"pharmacist_approved"`
	AmountTotal        float64     `json:"amount_total"`
	InsuranceAmount    float64     `json:"insurance_amount"`
	PatientCopay       float64     `json:"patient_copay"`
	Lines              []OrderLine `json:"lines"`
}

type ControlledDispensedPayload struct {
	OrderUID         string  `json:"order_uid"`
	RegisterEntryID  int64   `json:"register_entry_id"`
	ProductID        int64   `json:"product_id"`
	ProductName      string  `json:"product_name"`
	Schedule         string  `json:"schedule"`
	Quantity         float64 `json:"quantity"`
	PatientName      string  `json:"patient_name"`
	PrescriberNumber string  `json:"prescriber_number,omitempty"`
	PharmacistID     int64   `json:"pharmacist_id"`
}

type PrescriptionServedPayload struct {
	OrderUID       string `json:"order_uid"`
	PrescriptionID int64  `json:"prescription_id"`
	State          string `json:"state"`
	DispensedBy    string `json:"dispensed_by"`
}

// PartitionKey keys messages by order UID so one order's events keep
// their relative order.
func PartitionKey(orderUID string) []byte { return []byte(orderUID) }

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
