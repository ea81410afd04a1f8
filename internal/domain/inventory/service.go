package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	lots           Repository
	warnNearExpiry bool
	nearExpiryDays int
}

// NewService builds the lot service. warnNearExpiry and
// nearExpiryDays control what the expiry report covers: with warnings
// off only already-expired stock is reported, and nearExpiryDays is
// the report window when the caller does not pass one.
func NewService(lots Repository, warnNearExpiry bool, nearExpiryDays int) *Service {
	if nearExpiryDays <= 0 {
		nearExpiryDays = 90
	}
	return &Service{lots: lots, warnNearExpiry: warnNearExpiry, nearExpiryDays: nearExpiryDays}
}

func (s *Service) Receive(ctx context.Context, l *Lot) error {
	if l.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}
	if strings.TrimSpace(l.LotNumber) == "" {
		return fmt.Errorf("lot_number is required")
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if l.ExpiryDate != nil && l.ManufacturingDate != nil && !l.ExpiryDate.After(*l.ManufacturingDate) {
		return fmt.Errorf("expiry_date must be after manufacturing_date")
	}
	if l.ReceivedDate.IsZero() {
		l.ReceivedDate = time.Now()
	}
	return s.lots.Create(ctx, l)
}

func (s *Service) Get(ctx context.Context, id int64) (*Lot, error) {
	return s.lots.GetByID(ctx, id)
}

func (s *Service) LotsForProduct(ctx context.Context, productID int64) ([]*Lot, error) {
	return s.lots.LotsForProduct(ctx, productID)
}

// HasExpiredStock reports whether any lot with stock for the product
// is past its expiry date.
func (s *Service) HasExpiredStock(ctx context.Context, productID int64, at time.Time) (bool, error) {
	lots, err := s.lots.LotsForProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	for _, l := range lots {
		if l.IsExpired(at) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) AdjustQuantity(ctx context.Context, id int64, delta float64) error {
	return s.lots.AdjustQuantity(ctx, id, delta)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Lot, int, error) {
	return s.lots.List(ctx, limit, offset)
}

// ExpiryReport bands every lot expiring within windowDays of now,
// expired stock included, tightest band first within expiry order.
// A non-positive windowDays falls back to the configured near-expiry
// window. When near-expiry warnings are disabled the report lists
// expired stock only.
func (s *Service) ExpiryReport(ctx context.Context, windowDays int) ([]*ExpiryReportLine, error) {
	if windowDays <= 0 {
		windowDays = s.nearExpiryDays
	}
	if !s.warnNearExpiry {
		windowDays = 0
	}
	now := time.Now()
	lots, err := s.lots.ExpiringBefore(ctx, now.AddDate(0, 0, windowDays))
	if err != nil {
		return nil, err
	}
	report := make([]*ExpiryReportLine, 0, len(lots))
	for _, l := range lots {
		days, ok := l.DaysToExpiry(now)
		if !ok {
			continue
		}
		if !s.warnNearExpiry && !l.IsExpired(now) {
			continue
		}
		report = append(report, &ExpiryReportLine{Lot: l, Band: l.Band(now), DaysToExpiry: days})
	}
	return report, nil
}
