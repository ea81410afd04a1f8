package order

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrDuplicate = errors.New("order uid already recorded")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByUID(ctx context.Context, uid string) (*Order, error)
	List(ctx context.Context, limit, offset int) ([]*Order, error)
	ListBySession(ctx context.Context, sessionID int64, limit, offset int) ([]*Order, error)
	Count(ctx context.Context) (int, error)
}
