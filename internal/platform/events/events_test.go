package events

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := OrderPaidPayload{
		OrderUID:    "00042-001-0007",
		SessionID:   3,
		AmountTotal: 1250.50,
		Lines: []OrderLine{
			{ProductID: 9, Name: "Amoxicillin 500mg", Quantity: 2, Price: 625.25},
		},
	}
	env := Envelope{
		EventID:      "evt-1",
		EventType:    EventOrderPaid,
		EventVersion: 1,
		Producer:     "pharmacy-pos",
		OrderUID:     payload.OrderUID,
		Payload:      MustMarshal(payload),
	}

	b := MustMarshal(env)

	var got Envelope
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if got.EventType != EventOrderPaid {
		t.Errorf("event type = %s, want %s", got.EventType, EventOrderPaid)
	}
	var gotPayload OrderPaidPayload
	if err := json.Unmarshal(got.Payload, &gotPayload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if gotPayload.AmountTotal != 1250.50 {
		t.Errorf("amount = %v, want 1250.50", gotPayload.AmountTotal)
	}
	if len(gotPayload.Lines) != 1 || gotPayload.Lines[0].Name != "Amoxicillin 500mg" {
		t.Errorf("unexpected lines: %+v", gotPayload.Lines)
	}
}

func TestPartitionKey(t *testing.T) {
	if string(PartitionKey("00042-001-0007")) != "00042-001-0007" {
		t.Error("partition key should be the order uid")
	}
}
