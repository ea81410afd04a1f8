package prescriber

import "context"

type Repository interface {
	Create(ctx context.Context, p *Prescriber) error
	GetByID(ctx context.Context, id int64) (*Prescriber, error)
	GetByLicense(ctx context.Context, licenseNumber string) (*Prescriber, error)
	Update(ctx context.Context, p *Prescriber) error
	List(ctx context.Context, limit, offset int) ([]*Prescriber, int, error)
}
