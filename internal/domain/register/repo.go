package register

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	ListByPeriod(ctx context.Context, from, to time.Time, limit, offset int) ([]*Entry, int, error)
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*Entry, int, error)
}
