package patient

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// LookupLimit caps till-side patient search results.
const LookupLimit = 20

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Create registers a new patient. First name, last name, phone and
// date of birth are required before the record can back a sale.
func (s *Service) Create(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("last_name is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	if countDigits(p.Phone) < 10 {
		return fmt.Errorf("phone must have at least 10 digits")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if p.IDNumber != nil {
		if existing, err := s.patients.GetByIDNumber(ctx, *p.IDNumber); err == nil && existing != nil {
			return fmt.Errorf("id_number already registered to patient %d", existing.ID)
		}
	}
	p.Active = true
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.Phone != "" && countDigits(p.Phone) < 10 {
		return fmt.Errorf("phone must have at least 10 digits")
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.patients.Deactivate(ctx, id)
}

// Lookup searches active patients by name, phone or national ID for
// the till. An empty term lists unfiltered, which is what the till
// shows when the selection dialog opens. Results are capped at
// LookupLimit either way.
func (s *Service) Lookup(ctx context.Context, term string) ([]*Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		patients, _, err := s.patients.List(ctx, LookupLimit, 0)
		return patients, err
	}
	return s.patients.Lookup(ctx, term, LookupLimit)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
