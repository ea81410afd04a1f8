package prescriber

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	prescribers Repository
}

func NewService(prescribers Repository) *Service {
	return &Service{prescribers: prescribers}
}

func (s *Service) Create(ctx context.Context, p *Prescriber) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.LicenseNumber) == "" {
		return fmt.Errorf("license_number is required")
	}
	if existing, err := s.prescribers.GetByLicense(ctx, p.LicenseNumber); err == nil && existing != nil {
		return fmt.Errorf("license_number already registered to prescriber %d", existing.ID)
	}
	p.Active = true
	return s.prescribers.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Prescriber, error) {
	return s.prescribers.GetByID(ctx, id)
}

func (s *Service) GetByLicense(ctx context.Context, licenseNumber string) (*Prescriber, error) {
	return s.prescribers.GetByLicense(ctx, licenseNumber)
}

func (s *Service) Update(ctx context.Context, p *Prescriber) error {
	return s.prescribers.Update(ctx, p)
}

// Verify marks the prescriber's credentials as checked against the
// regulator's records. Fails if the license on record is expired.
func (s *Service) Verify(ctx context.Context, id int64) (*Prescriber, error) {
	p, err := s.prescribers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.LicenseValid(time.Now()) {
		return nil, fmt.Errorf("license %s is expired", p.LicenseNumber)
	}
	p.Verified = true
	if err := s.prescribers.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Prescriber, int, error) {
	return s.prescribers.List(ctx, limit, offset)
}
