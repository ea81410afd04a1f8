package patient

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[int64]*Patient
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[int64]*Patient), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByIDNumber(_ context.Context, idNumber string) (*Patient, error) {
	for _, p := range m.patients {
		if p.IDNumber != nil && *p.IDNumber == idNumber {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Deactivate(_ context.Context, id int64) error {
	if p, ok := m.patients[id]; ok {
		p.Active = false
	}
	return nil
}

func (m *mockRepo) Lookup(_ context.Context, term string, limit int) ([]*Patient, error) {
	term = strings.ToLower(term)
	var result []*Patient
	for _, p := range m.patients {
		if !p.Active {
			continue
		}
		idNum := ""
		if p.IDNumber != nil {
			idNum = *p.IDNumber
		}
		if strings.Contains(strings.ToLower(p.FullName()), term) ||
			strings.Contains(p.Phone, term) ||
			strings.Contains(strings.ToLower(idNum), term) {
			result = append(result, p)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.patients {
		if p.Active {
			all = append(all, p)
		}
	}
	total := len(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func strPtr(s string) *string { return &s }

func validPatient() *Patient {
	return &Patient{
		FirstName:   "Jane",
		LastName:    "Doe",
		Phone:       "0712345678",
		DateOfBirth: time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

// -- Tests --

func TestCreate_RequiredFields(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"missing first name", func(p *Patient) { p.FirstName = "" }},
		{"missing last name", func(p *Patient) { p.LastName = "" }},
		{"missing phone", func(p *Patient) { p.Phone = "" }},
		{"missing dob", func(p *Patient) { p.DateOfBirth = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPatient()
			tc.mutate(p)
			if err := svc.Create(ctx, p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreate_PhoneTooShort(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPatient()
	p.Phone = "12345"
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for short phone")
	}
}

func TestCreate_SetsActive(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPatient()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !p.Active {
		t.Error("new patient should be active")
	}
	if p.ID == 0 {
		t.Error("expected assigned id")
	}
}

func TestCreate_DuplicateIDNumber(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first := validPatient()
	first.IDNumber = strPtr("12345678")
	if err := svc.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := validPatient()
	dup.Phone = "0798765432"
	dup.IDNumber = strPtr("12345678")
	if err := svc.Create(ctx, dup); err == nil {
		t.Error("expected duplicate id_number error")
	}
}

func TestLookup_EmptyTermListsActive(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < LookupLimit+5; i++ {
		p := validPatient()
		p.Phone = fmt.Sprintf("07123456%02d", i)
		if err := svc.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := svc.Lookup(ctx, "  ")
	if err != nil {
		t.Fatalf("lookup with empty term: %v", err)
	}
	if len(got) != LookupLimit {
		t.Errorf("got %d results, want %d", len(got), LookupLimit)
	}
}

func TestLookup_MatchesNamePhoneID(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p := validPatient()
	p.IDNumber = strPtr("30112233")
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, term := range []string{"jane", "0712", "30112233"} {
		got, err := svc.Lookup(ctx, term)
		if err != nil {
			t.Fatalf("lookup %q: %v", term, err)
		}
		if len(got) != 1 {
			t.Errorf("lookup %q: got %d results, want 1", term, len(got))
		}
	}
}

func TestFullName(t *testing.T) {
	p := &Patient{FirstName: "Jane", LastName: "Doe"}
	if got := p.FullName(); got != "Jane Doe" {
		t.Errorf("full name = %q", got)
	}
	p.MiddleName = strPtr("W")
	if got := p.FullName(); got != "Jane W Doe" {
		t.Errorf("full name with middle = %q", got)
	}
}

func TestAgeAt(t *testing.T) {
	p := &Patient{DateOfBirth: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)}
	at := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	if got := p.AgeAt(at); got != 35 {
		t.Errorf("age day before birthday = %d, want 35", got)
	}
	at = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := p.AgeAt(at); got != 36 {
		t.Errorf("age on birthday = %d, want 36", got)
	}
}

func TestInsuranceValid(t *testing.T) {
	now := time.Now()
	p := &Patient{HasInsurance: false}
	if p.InsuranceValid(now) {
		t.Error("no cover should not be valid")
	}
	p.HasInsurance = true
	if !p.InsuranceValid(now) {
		t.Error("open-ended cover should be valid")
	}
	past := now.AddDate(0, -1, 0)
	p.InsuranceExpiry = &past
	if p.InsuranceValid(now) {
		t.Error("expired cover should not be valid")
	}
}
