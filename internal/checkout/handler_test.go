package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func postJSON(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c
}

func newTestHandler(staff StaffDirectory, settings Settings, pay PaymentFunc) *Handler {
	return NewHandler(staff, newFakeDirectory(), nil, settings, pay)
}

func decodeCheckout(t *testing.T, rec *httptest.ResponseRecorder) CheckoutResponse {
	t.Helper()
	var resp CheckoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandler_ValidateBlocksUnlinkedPrescription(t *testing.T) {
	h := newTestHandler(&fakeStaff{}, Settings{RequirePrescriptionValidation: true}, nil)
	rec, _ := postJSON(t, h.Validate, `{"order":{"uid":"d-1","lines":[
		{"product_id":1,"product_name":"Amoxicillin","quantity":1,"requires_prescription":true}]}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decodeCheckout(t, rec)
	if resp.Decision.Allowed {
		t.Fatal("expected a blocked decision")
	}
	if resp.Decision.Code != BlockMissingPrescription {
		t.Errorf("code = %s, want %s", resp.Decision.Code, BlockMissingPrescription)
	}
	if len(resp.Prompts) == 0 {
		t.Error("expected the block prompt to be echoed back")
	}
}

func TestHandler_PayWithPINApprovesAndPays(t *testing.T) {
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Amina"}}
	paid := false
	h := newTestHandler(staff, Settings{RequirePrescriptionValidation: true}, func(ctx context.Context, o *Order) error {
		paid = true
		return nil
	})

	rec, _ := postJSON(t, h.Pay, `{"approve_requested":true,"pharmacist_pin":"4321",
		"order":{"uid":"d-2","patient_id":3,"lines":[
		{"product_id":2,"product_name":"Morphine","quantity":1,"requires_prescription":true,
		 "controlled":true,"schedule":"schedule_2"}]}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decodeCheckout(t, rec)
	if !resp.Decision.Allowed {
		t.Fatalf("decision = %+v, want allowed", resp.Decision)
	}
	if !paid {
		t.Error("payment flow did not run")
	}
	if !resp.Order.ApprovedByPharmacist || resp.Order.PharmacistID == nil || *resp.Order.PharmacistID != 7 {
		t.Errorf("order annotation = %+v, want approval by pharmacist 7", resp.Order)
	}
}

func TestHandler_PayWrongPINBlocksWithoutPayment(t *testing.T) {
	staff := &fakeStaff{pin: "4321", pharmacist: &Pharmacist{ID: 7, Name: "Amina"}}
	paid := false
	h := newTestHandler(staff, Settings{RequirePrescriptionValidation: true}, func(ctx context.Context, o *Order) error {
		paid = true
		return nil
	})

	rec, _ := postJSON(t, h.Pay, `{"approve_requested":true,"pharmacist_pin":"9999",
		"order":{"uid":"d-3","patient_id":3,"lines":[
		{"product_id":2,"product_name":"Morphine","quantity":1,"requires_prescription":true,
		 "controlled":true,"schedule":"schedule_2"}]}}`)

	resp := decodeCheckout(t, rec)
	if resp.Decision.Allowed {
		t.Fatal("expected a block on a wrong PIN")
	}
	if resp.Decision.Code != BlockApprovalMissing {
		t.Errorf("code = %s, want %s", resp.Decision.Code, BlockApprovalMissing)
	}
	if paid {
		t.Error("payment ran despite failed approval")
	}
}

func TestHandler_PayDeclinedApprovalSilentBlock(t *testing.T) {
	h := newTestHandler(&fakeStaff{}, Settings{RequirePrescriptionValidation: true}, nil)
	rec, _ := postJSON(t, h.Pay, `{"approve_requested":false,
		"order":{"uid":"d-4","patient_id":3,"lines":[
		{"product_id":2,"product_name":"Morphine","quantity":1,"requires_prescription":true,
		 "controlled":true,"schedule":"schedule_2"}]}}`)

	resp := decodeCheckout(t, rec)
	if resp.Decision.Allowed || !resp.Decision.Silent {
		t.Errorf("decision = %+v, want silent block", resp.Decision)
	}
}

func TestHandler_SelectPatientLinksOrder(t *testing.T) {
	dir := newFakeDirectory()
	id, _ := dir.Create(nil, validNewPatient())
	h := NewHandler(&fakeStaff{}, dir, nil, Settings{}, nil)

	rec, _ := postJSON(t, h.SelectPatient, `{"patient_id":1,"order":{"uid":"d-5"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp PatientSelectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Order.PatientID == nil || *resp.Order.PatientID != id {
		t.Errorf("order.PatientID = %v, want %d", resp.Order.PatientID, id)
	}
	if resp.Patient == nil || resp.Patient.FullName != "Jane Doe" {
		t.Errorf("patient = %+v", resp.Patient)
	}
}

func TestHandler_SelectPatientClear(t *testing.T) {
	h := NewHandler(&fakeStaff{}, newFakeDirectory(), nil, Settings{}, nil)
	rec, _ := postJSON(t, h.SelectPatient,
		`{"clear":true,"order":{"uid":"d-6","patient_id":3,"patient_name":"Jane Doe"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp PatientSelectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Order.PatientID != nil || resp.Order.PatientName != "" {
		t.Errorf("order still linked: %+v", resp.Order)
	}
}

func TestHandler_SelectPatientUnknownID(t *testing.T) {
	h := NewHandler(&fakeStaff{}, newFakeDirectory(), nil, Settings{}, nil)
	rec, _ := postJSON(t, h.SelectPatient, `{"patient_id":42,"order":{"uid":"d-7"}}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
