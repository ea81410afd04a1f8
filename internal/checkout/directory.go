package checkout

import (
	"context"
	"time"

	"github.com/softlink/pharmacy-pos/internal/domain/patient"
	"github.com/softlink/pharmacy-pos/internal/domain/staff"
)

// Adapters from the domain services to the narrow views the till
// flows consume.

type staffDirectory struct{ svc *staff.Service }

func NewStaffDirectory(svc *staff.Service) StaffDirectory {
	return &staffDirectory{svc: svc}
}

func (d *staffDirectory) FindPharmacistByPIN(ctx context.Context, pin string) (*Pharmacist, error) {
	u, err := d.svc.FindPharmacistByPIN(ctx, pin)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return &Pharmacist{ID: u.ID, Name: u.Name}, nil
}

type patientDirectory struct{ svc *patient.Service }

func NewPatientDirectory(svc *patient.Service) PatientDirectory {
	return &patientDirectory{svc: svc}
}

func toPatientInfo(p *patient.Patient) *PatientInfo {
	info := &PatientInfo{
		ID:           p.ID,
		FullName:     p.FullName(),
		Phone:        p.Phone,
		HasInsurance: p.InsuranceValid(time.Now()),
	}
	if info.HasInsurance {
		if p.InsuranceCompany != nil {
			info.InsuranceCompany = *p.InsuranceCompany
		}
		if p.InsuranceNumber != nil {
			info.InsuranceNumber = *p.InsuranceNumber
		}
	}
	return info
}

func (d *patientDirectory) Search(ctx context.Context, term string, limit int) ([]*PatientInfo, error) {
	matches, err := d.svc.Lookup(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]*PatientInfo, 0, len(matches))
	for _, p := range matches {
		out = append(out, toPatientInfo(p))
	}
	return out, nil
}

func (d *patientDirectory) Create(ctx context.Context, np NewPatient) (int64, error) {
	p := &patient.Patient{
		FirstName:   np.FirstName,
		LastName:    np.LastName,
		Phone:       np.Phone,
		DateOfBirth: np.DateOfBirth,
		Active:      true,
	}
	if np.Gender != "" {
		g := np.Gender
		p.Gender = &g
	}
	if np.IDNumber != "" {
		id := np.IDNumber
		p.IDNumber = &id
	}
	if err := d.svc.Create(ctx, p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (d *patientDirectory) Get(ctx context.Context, id int64) (*PatientInfo, error) {
	p, err := d.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPatientInfo(p), nil
}
