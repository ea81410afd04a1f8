package staff

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	users    UserRepository
	sessions SessionRepository

	// rolesEnabled mirrors the staff-roles deployment switch. With it
	// off, PIN lookups by role can never match, so pharmacist
	// sign-off degrades to always refusing rather than accepting any
	// PIN.
	rolesEnabled bool

	// requirePharmacist forces an assigned pharmacist before a
	// session can open.
	requirePharmacist bool
}

func NewService(users UserRepository, sessions SessionRepository, rolesEnabled, requirePharmacist bool) *Service {
	return &Service{
		users:             users,
		sessions:          sessions,
		rolesEnabled:      rolesEnabled,
		requirePharmacist: requirePharmacist,
	}
}

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(u.PIN) < 4 {
		return fmt.Errorf("pin must be at least 4 digits")
	}
	u.Active = true
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	return s.users.Update(ctx, u)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// FindPharmacistByPIN resolves a pharmacist from an exact PIN match.
// Returns nil without error when nothing matches, when several users
// share the PIN, or when role tracking is disabled.
func (s *Service) FindPharmacistByPIN(ctx context.Context, pin string) (*User, error) {
	if !s.rolesEnabled {
		return nil, nil
	}
	if pin == "" {
		return nil, nil
	}
	matches, err := s.users.FindByPINAndRole(ctx, pin, RolePharmacist)
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, nil
	}
	return matches[0], nil
}

// OpenSession starts a till shift. When pharmacist sign-off is in
// force a pharmacist must be assigned on duty before opening.
func (s *Service) OpenSession(ctx context.Context, openedByID int64, pharmacistID *int64) (*Session, error) {
	if existing, err := s.sessions.GetOpen(ctx); err == nil && existing != nil {
		return nil, fmt.Errorf("session %s is already open", existing.Name)
	}
	if s.requirePharmacist {
		if pharmacistID == nil {
			return nil, fmt.Errorf("a pharmacist on duty is required to open the session")
		}
		u, err := s.users.GetByID(ctx, *pharmacistID)
		if err != nil {
			return nil, fmt.Errorf("pharmacist %d not found", *pharmacistID)
		}
		if !u.HasRole(RolePharmacist) {
			return nil, fmt.Errorf("user %s is not a pharmacist", u.Name)
		}
	}
	now := time.Now()
	sess := &Session{
		Name:         fmt.Sprintf("POS/%s", now.Format("20060102/150405")),
		State:        SessionOpen,
		OpenedByID:   openedByID,
		PharmacistID: pharmacistID,
		OpenedAt:     now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id int64) (*Session, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Service) CurrentSession(ctx context.Context) (*Session, error) {
	return s.sessions.GetOpen(ctx)
}

func (s *Service) CloseSession(ctx context.Context, id int64) (*Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State != SessionOpen {
		return nil, fmt.Errorf("session is not open")
	}
	now := time.Now()
	sess.State = SessionClosed
	sess.ClosedAt = &now
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RecordSale bumps the session's regulated-sale tallies.
func (s *Service) RecordSale(ctx context.Context, sessionID int64, hadPrescription, hadControlled bool) error {
	rx, cd := 0, 0
	if hadPrescription {
		rx = 1
	}
	if hadControlled {
		cd = 1
	}
	if rx == 0 && cd == 0 {
		return nil
	}
	return s.sessions.IncrementCounters(ctx, sessionID, rx, cd)
}
