package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByIDNumber(ctx context.Context, idNumber string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Deactivate(ctx context.Context, id int64) error
	// Lookup matches term against full name, phone and national ID
	// as a substring, active patients only, capped at limit.
	Lookup(ctx context.Context, term string, limit int) ([]*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
