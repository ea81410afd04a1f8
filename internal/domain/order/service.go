package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/softlink/pharmacy-pos/internal/checkout"
	"github.com/softlink/pharmacy-pos/internal/domain/patient"
	"github.com/softlink/pharmacy-pos/internal/domain/prescriber"
	"github.com/softlink/pharmacy-pos/internal/domain/prescription"
	"github.com/softlink/pharmacy-pos/internal/domain/register"
	"github.com/softlink/pharmacy-pos/internal/domain/staff"
	"github.com/softlink/pharmacy-pos/internal/platform/events"
)

var (
	ErrEmptyOrder       = errors.New("order has no lines")
	ErrMissingUID       = errors.New("order uid is required")
	ErrApprovalRequired = errors.New("order requires pharmacist approval before payment")
)

// TxRunner executes fn atomically. The production wiring passes a
// closure over db.WithTx; tests pass a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Passthrough runs fn directly, with no transaction.
func Passthrough(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// The service talks to the other domains through narrow interfaces so
// the finalization path can be tested without a database.
type (
	RegisterRecorder interface {
		Record(ctx context.Context, e *register.Entry) error
	}
	PrescriptionStore interface {
		Get(ctx context.Context, id int64) (*prescription.Prescription, error)
		Dispense(ctx context.Context, id int64, by string, quantities []prescription.DispensedQuantity) (*prescription.Prescription, error)
	}
	StaffDirectory interface {
		GetUser(ctx context.Context, id int64) (*staff.User, error)
		RecordSale(ctx context.Context, sessionID int64, hadPrescription, hadControlled bool) error
	}
	PatientDirectory interface {
		Get(ctx context.Context, id int64) (*patient.Patient, error)
	}
	PrescriberDirectory interface {
		Get(ctx context.Context, id int64) (*prescriber.Prescriber, error)
	}
	StockAdjuster interface {
		AdjustQuantity(ctx context.Context, lotID int64, delta float64) error
	}
	Publisher interface {
		Publish(eventType, orderUID string, payload any)
	}
	DraftDeleter interface {
		Delete(ctx context.Context, sessionID, orderUID string) error
	}
)

// Deps collects everything order finalization touches.
type Deps struct {
	Orders        Repository
	Register      RegisterRecorder
	Prescriptions PrescriptionStore
	Staff         StaffDirectory
	Patients      PatientDirectory
	Prescribers   PrescriberDirectory
	Stock         StockAdjuster
	Publisher     Publisher
	Drafts        DraftDeleter
	RunTx         TxRunner
	Log           zerolog.Logger
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.RunTx == nil {
		deps.RunTx = Passthrough
	}
	return &Service{deps: deps}
}

// Finalize records a paid order and applies its side effects in one
// transaction: stock deduction per lot, prescription dispense,
// controlled register entries and session counters. Events go out
// after the transaction commits. The checkout gate is expected to
// have run already; the approval check here is a backstop for
// callers that bypass it.
func (s *Service) Finalize(ctx context.Context, co *checkout.Order) (*Order, error) {
	if co.UID == "" {
		return nil, ErrMissingUID
	}
	if len(co.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if co.RequiresPharmacistApproval() && !co.ApprovedByPharmacist {
		return nil, ErrApprovalRequired
	}

	o := fromCheckout(co)
	var entries []*register.Entry
	var served *prescription.Prescription

	err := s.deps.RunTx(ctx, func(ctx context.Context) error {
		if err := s.deps.Orders.Create(ctx, o); err != nil {
			return err
		}
		for _, l := range co.Lines {
			if l.LotID == nil {
				continue
			}
			if err := s.deps.Stock.AdjustQuantity(ctx, *l.LotID, -l.Quantity); err != nil {
				return fmt.Errorf("deduct lot %d: %w", *l.LotID, err)
			}
		}
		var err error
		served, err = s.dispensePrescription(ctx, co)
		if err != nil {
			return err
		}
		entries, err = s.recordControlled(ctx, co, served)
		if err != nil {
			return err
		}
		return s.deps.Staff.RecordSale(ctx, co.SessionID,
			co.HasPrescriptionItems(), co.HasControlledDrugs())
	})
	if err != nil {
		return nil, err
	}

	s.publish(o, entries, served)

	if s.deps.Drafts != nil {
		if err := s.deps.Drafts.Delete(ctx, fmt.Sprint(co.SessionID), co.UID); err != nil {
			s.deps.Log.Warn().Err(err).Str("order_uid", co.UID).Msg("draft cleanup failed")
		}
	}
	return o, nil
}

func fromCheckout(co *checkout.Order) *Order {
	o := &Order{
		UID:                  co.UID,
		SessionID:            co.SessionID,
		AmountTotal:          co.AmountTotal,
		PatientID:            co.PatientID,
		PatientName:          co.PatientName,
		PatientPhone:         co.PatientPhone,
		PrescriptionID:       co.PrescriptionID,
		InsuranceClaim:       co.InsuranceClaim,
		InsuranceCompany:     co.InsuranceCompany,
		InsuranceNumber:      co.InsuranceNumber,
		InsuranceAmount:      co.InsuranceAmount,
		PatientCopay:         co.PatientCopay,
		ApprovedByPharmacist: co.ApprovedByPharmacist,
		PharmacistID:         co.PharmacistID,
		PaidAt:               time.Now(),
	}
	for _, l := range co.Lines {
		ol := &Line{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Controlled:  l.Controlled,
			LotID:       l.LotID,
		}
		if l.Schedule != "" {
			sched := l.Schedule
			ol.Schedule = &sched
		}
		o.Lines = append(o.Lines, ol)
	}
	return o
}

// dispensePrescription marks the linked prescription served for the
// order lines that actually appear on it. Lines sold over the counter
// alongside the prescription are ignored, and a quantity larger than
// what the prescription still owes is capped so a repeat sale of the
// same product cannot overrun the line.
func (s *Service) dispensePrescription(ctx context.Context, co *checkout.Order) (*prescription.Prescription, error) {
	if co.PrescriptionID == nil {
		return nil, nil
	}
	p, err := s.deps.Prescriptions.Get(ctx, *co.PrescriptionID)
	if err != nil {
		return nil, err
	}
	remaining := make(map[int64]float64, len(p.Lines))
	for _, l := range p.Lines {
		remaining[l.ProductID] = l.Remaining()
	}
	var quantities []prescription.DispensedQuantity
	for _, l := range co.Lines {
		rem, onRx := remaining[l.ProductID]
		if !onRx || rem <= 0 {
			continue
		}
		qty := l.Quantity
		if qty > rem {
			qty = rem
		}
		quantities = append(quantities, prescription.DispensedQuantity{
			ProductID: l.ProductID, Quantity: qty,
		})
	}
	if len(quantities) == 0 {
		return p, nil
	}
	return s.deps.Prescriptions.Dispense(ctx, *co.PrescriptionID, s.dispenserName(ctx, co), quantities)
}

func (s *Service) dispenserName(ctx context.Context, co *checkout.Order) string {
	if co.PharmacistID != nil {
		if u, err := s.deps.Staff.GetUser(ctx, *co.PharmacistID); err == nil {
			return u.Name
		}
	}
	return fmt.Sprintf("pos session %d", co.SessionID)
}

// recordControlled writes one register entry per controlled line,
// snapshotting patient, prescriber and pharmacist details as they
// stand now.
func (s *Service) recordControlled(ctx context.Context, co *checkout.Order, rx *prescription.Prescription) ([]*register.Entry, error) {
	if !co.HasControlledDrugs() {
		return nil, nil
	}
	if co.PharmacistID == nil {
		return nil, ErrApprovalRequired
	}
	pharmacist, err := s.deps.Staff.GetUser(ctx, *co.PharmacistID)
	if err != nil {
		return nil, fmt.Errorf("load approving pharmacist: %w", err)
	}

	patientName := co.PatientName
	var patientIDNumber, patientAddress *string
	if co.PatientID != nil {
		pt, err := s.deps.Patients.Get(ctx, *co.PatientID)
		if err != nil {
			return nil, fmt.Errorf("load patient snapshot: %w", err)
		}
		patientName = pt.FullName()
		patientIDNumber = pt.IDNumber
		patientAddress = pt.Address
	}

	var prescriberName, prescriberLicense, rxNumber *string
	if rx != nil {
		n := rx.Number
		rxNumber = &n
		if pb, err := s.deps.Prescribers.Get(ctx, rx.PrescriberID); err == nil {
			prescriberName = &pb.Name
			prescriberLicense = &pb.LicenseNumber
		}
	}

	var entries []*register.Entry
	for _, l := range co.Lines {
		if !l.Controlled {
			continue
		}
		e := &register.Entry{
			Date:               time.Now(),
			OrderUID:           co.UID,
			ProductID:          l.ProductID,
			ProductName:        l.ProductName,
			Schedule:           l.Schedule,
			Quantity:           l.Quantity,
			PatientName:        patientName,
			PatientIDNumber:    patientIDNumber,
			PatientAddress:     patientAddress,
			PrescriberName:     prescriberName,
			PrescriberLicense:  prescriberLicense,
			PrescriptionNumber: rxNumber,
			PharmacistID:       pharmacist.ID,
			PharmacistName:     pharmacist.Name,
		}
		if err := s.deps.Register.Record(ctx, e); err != nil {
			return nil, fmt.Errorf("controlled register entry for product %d: %w", l.ProductID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Service) publish(o *Order, entries []*register.Entry, served *prescription.Prescription) {
	if s.deps.Publisher == nil {
		return
	}
	paid := events.OrderPaidPayload{
		OrderUID:           o.UID,
		SessionID:          o.SessionID,
		PatientID:          o.PatientID,
		PrescriptionID:     o.PrescriptionID,
		PharmacistApproved: o.ApprovedByPharmacist,
		AmountTotal:        o.AmountTotal,
		InsuranceAmount:    o.InsuranceAmount,
		PatientCopay:       o.PatientCopay,
	}
	for _, l := range o.Lines {
		paid.Lines = append(paid.Lines, events.OrderLine{
			ProductID: l.ProductID, Name: l.ProductName,
			Quantity: l.Quantity, Price: l.Price,
		})
	}
	s.deps.Publisher.Publish(events.EventOrderPaid, o.UID, paid)

	for _, e := range entries {
		payload := events.ControlledDispensedPayload{
			OrderUID:        o.UID,
			RegisterEntryID: e.ID,
			ProductID:       e.ProductID,
			ProductName:     e.ProductName,
			Schedule:        e.Schedule,
			Quantity:        e.Quantity,
			PatientName:     e.PatientName,
			PharmacistID:    e.PharmacistID,
		}
		if e.PrescriberLicense != nil {
			payload.PrescriberNumber = *e.PrescriberLicense
		}
		s.deps.Publisher.Publish(events.EventControlledDispensed, o.UID, payload)
	}

	if served != nil && served.DispensedBy != nil {
		s.deps.Publisher.Publish(events.EventPrescriptionServed, o.UID, events.PrescriptionServedPayload{
			OrderUID:       o.UID,
			PrescriptionID: served.ID,
			State:          served.State,
			DispensedBy:    *served.DispensedBy,
		})
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.deps.Orders.GetByID(ctx, id)
}

func (s *Service) GetByUID(ctx context.Context, uid string) (*Order, error) {
	return s.deps.Orders.GetByUID(ctx, uid)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	items, err := s.deps.Orders.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.deps.Orders.Count(ctx)
	return items, total, err
}

func (s *Service) ListBySession(ctx context.Context, sessionID int64, limit, offset int) ([]*Order, int, error) {
	items, err := s.deps.Orders.ListBySession(ctx, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.deps.Orders.Count(ctx)
	return items, total, err
}
