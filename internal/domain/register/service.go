package register

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	entries Repository
}

func NewService(entries Repository) *Service {
	return &Service{entries: entries}
}

// Record writes a register entry. Entries are append-only; there is
// deliberately no update or delete path.
func (s *Service) Record(ctx context.Context, e *Entry) error {
	if e.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if e.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if e.PharmacistID == 0 {
		return fmt.Errorf("pharmacist_id is required")
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return s.entries.Create(ctx, e)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entry, error) {
	return s.entries.GetByID(ctx, id)
}

func (s *Service) ListByPeriod(ctx context.Context, from, to time.Time, limit, offset int) ([]*Entry, int, error) {
	if !to.After(from) {
		return nil, 0, fmt.Errorf("to must be after from")
	}
	return s.entries.ListByPeriod(ctx, from, to, limit, offset)
}

func (s *Service) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*Entry, int, error) {
	return s.entries.ListByProduct(ctx, productID, limit, offset)
}
