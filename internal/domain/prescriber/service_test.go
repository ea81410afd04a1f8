package prescriber

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type mockRepo struct {
	items  map[int64]*Prescriber
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]*Prescriber), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, p *Prescriber) error {
	p.ID = m.nextID
	m.nextID++
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Prescriber, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByLicense(_ context.Context, license string) (*Prescriber, error) {
	for _, p := range m.items {
		if p.LicenseNumber == license {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, p *Prescriber) error {
	if _, ok := m.items[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Prescriber, int, error) {
	var all []*Prescriber
	for _, p := range m.items {
		all = append(all, p)
	}
	return all, len(all), nil
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if err := svc.Create(ctx, &Prescriber{LicenseNumber: "KMP-1"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Create(ctx, &Prescriber{Name: "Dr. Otieno"}); err == nil {
		t.Error("expected error for missing license")
	}
}

func TestCreate_DuplicateLicense(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if err := svc.Create(ctx, &Prescriber{Name: "Dr. Otieno", LicenseNumber: "KMP-100"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Create(ctx, &Prescriber{Name: "Dr. Wanjiru", LicenseNumber: "KMP-100"}); err == nil {
		t.Error("expected duplicate license error")
	}
}

func TestVerify(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p := &Prescriber{Name: "Dr. Otieno", LicenseNumber: "KMP-100"}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Verify(ctx, p.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.Verified {
		t.Error("expected prescriber verified")
	}
}

func TestVerify_ExpiredLicense(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	expired := time.Now().AddDate(-1, 0, 0)
	p := &Prescriber{Name: "Dr. Otieno", LicenseNumber: "KMP-100", LicenseExpiry: &expired}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Verify(ctx, p.ID); err == nil {
		t.Error("expected error for expired license")
	}
}

func TestLicenseValid_NoExpiry(t *testing.T) {
	p := &Prescriber{}
	if !p.LicenseValid(time.Now()) {
		t.Error("missing expiry should be treated as current")
	}
}
