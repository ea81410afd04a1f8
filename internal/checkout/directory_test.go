package checkout

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/softlink/pharmacy-pos/internal/domain/patient"
)

// In-memory patient repository backing the real service and adapter.

type memPatientRepo struct {
	patients map[int64]*patient.Patient
	nextID   int64
}

func newMemPatientRepo() *memPatientRepo {
	return &memPatientRepo{patients: make(map[int64]*patient.Patient), nextID: 1}
}

func (m *memPatientRepo) Create(_ context.Context, p *patient.Patient) error {
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *memPatientRepo) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %d not found", id)
	}
	return p, nil
}

func (m *memPatientRepo) GetByIDNumber(_ context.Context, idNumber string) (*patient.Patient, error) {
	for _, p := range m.patients {
		if p.IDNumber != nil && *p.IDNumber == idNumber {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPatientRepo) Update(_ context.Context, p *patient.Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *memPatientRepo) Deactivate(_ context.Context, id int64) error {
	if p, ok := m.patients[id]; ok {
		p.Active = false
	}
	return nil
}

func (m *memPatientRepo) Lookup(_ context.Context, term string, limit int) ([]*patient.Patient, error) {
	term = strings.ToLower(term)
	var result []*patient.Patient
	for _, p := range m.patients {
		if !p.Active {
			continue
		}
		if strings.Contains(strings.ToLower(p.FullName()), term) ||
			strings.Contains(p.Phone, term) {
			result = append(result, p)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *memPatientRepo) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	var all []*patient.Patient
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

func seededPatientDirectory(t *testing.T, n int) PatientDirectory {
	t.Helper()
	repo := newMemPatientRepo()
	svc := patient.NewService(repo)
	for i := 0; i < n; i++ {
		p := &patient.Patient{
			FirstName:   "Walkin",
			LastName:    fmt.Sprintf("Patient%02d", i),
			Phone:       fmt.Sprintf("07223344%02d", i),
			DateOfBirth: time.Date(1985, 3, 12, 0, 0, 0, 0, time.UTC),
		}
		if err := svc.Create(context.Background(), p); err != nil {
			t.Fatalf("seed patient: %v", err)
		}
	}
	return NewPatientDirectory(svc)
}

func TestPatientSelectionFlow_EmptySearchListsDirectory(t *testing.T) {
	dir := seededPatientDirectory(t, SearchLimit+5)
	flow := NewPatientSelectionFlow(dir, &Order{})

	got, err := flow.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("empty search: %v", err)
	}
	if len(got) != SearchLimit {
		t.Errorf("got %d results, want %d", len(got), SearchLimit)
	}
}

func TestPatientSelectionFlow_SearchByName(t *testing.T) {
	dir := seededPatientDirectory(t, 5)
	flow := NewPatientSelectionFlow(dir, &Order{})

	got, err := flow.Search(context.Background(), "patient03")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].FullName != "Walkin Patient03" {
		t.Errorf("got %q", got[0].FullName)
	}
}
