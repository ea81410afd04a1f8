package staff

import "context"

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, u *User) error
	// FindByPINAndRole returns active users whose PIN matches exactly
	// and who carry the role.
	FindByPINAndRole(ctx context.Context, pin, role string) ([]*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id int64) (*Session, error)
	GetOpen(ctx context.Context) (*Session, error)
	Update(ctx context.Context, s *Session) error
	IncrementCounters(ctx context.Context, id int64, prescription, controlled int) error
}
