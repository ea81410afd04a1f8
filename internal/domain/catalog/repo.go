package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	GetByPPBRegistration(ctx context.Context, reg string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Deactivate(ctx context.Context, id int64) error
	Search(ctx context.Context, term, category string, limit, offset int) ([]*Product, int, error)
}
