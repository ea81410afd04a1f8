package inventory

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Lot) error
	GetByID(ctx context.Context, id int64) (*Lot, error)
	// LotsForProduct returns lots with stock remaining, soonest
	// expiry first so FEFO picking comes naturally.
	LotsForProduct(ctx context.Context, productID int64) ([]*Lot, error)
	// ExpiringBefore returns lots with stock whose expiry falls on or
	// before the cutoff, including already-expired lots.
	ExpiringBefore(ctx context.Context, cutoff time.Time) ([]*Lot, error)
	AdjustQuantity(ctx context.Context, id int64, delta float64) error
	List(ctx context.Context, limit, offset int) ([]*Lot, int, error)
}
