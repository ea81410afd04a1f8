package prescription

import "context"

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	GetByNumber(ctx context.Context, number string) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	UpdateLine(ctx context.Context, l *Line) error
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Prescription, int, error)
	List(ctx context.Context, state string, limit, offset int) ([]*Prescription, int, error)
}
