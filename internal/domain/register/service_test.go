package register

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type mockRepo struct {
	entries map[int64]*Entry
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: make(map[int64]*Entry), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, e *Entry) error {
	e.ID = m.nextID
	m.nextID++
	e.CreatedAt = time.Now()
	m.entries[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return e, nil
}

func (m *mockRepo) ListByPeriod(_ context.Context, from, to time.Time, limit, offset int) ([]*Entry, int, error) {
	var result []*Entry
	for _, e := range m.entries {
		if !e.Date.Before(from) && e.Date.Before(to) {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByProduct(_ context.Context, productID int64, limit, offset int) ([]*Entry, int, error) {
	var result []*Entry
	for _, e := range m.entries {
		if e.ProductID == productID {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func validEntry() *Entry {
	return &Entry{
		OrderUID:       "00001-001-0001",
		ProductID:      7,
		ProductName:    "Morphine 10mg",
		Schedule:       "schedule_1",
		Quantity:       2,
		PatientName:    "J Doe",
		PharmacistID:   4,
		PharmacistName: "W. Achieng",
	}
}

func TestRecord_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	e := validEntry()
	e.ProductID = 0
	if err := svc.Record(ctx, e); err == nil {
		t.Error("expected error for missing product")
	}

	e = validEntry()
	e.Quantity = 0
	if err := svc.Record(ctx, e); err == nil {
		t.Error("expected error for zero quantity")
	}

	e = validEntry()
	e.PatientName = ""
	if err := svc.Record(ctx, e); err == nil {
		t.Error("expected error for missing patient name")
	}

	e = validEntry()
	e.PharmacistID = 0
	if err := svc.Record(ctx, e); err == nil {
		t.Error("expected error for missing pharmacist")
	}
}

func TestRecord_DefaultsDate(t *testing.T) {
	svc := NewService(newMockRepo())
	e := validEntry()
	if err := svc.Record(context.Background(), e); err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.Date.IsZero() {
		t.Error("expected date set")
	}
	if e.ID == 0 {
		t.Error("expected id assigned")
	}
}

func TestListByPeriod_Bounds(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e := validEntry()
	e.Date = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	if err := svc.Record(ctx, e); err != nil {
		t.Fatalf("record: %v", err)
	}

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	items, total, err := svc.ListByPeriod(ctx, from, to, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("got %d entries, want 1", total)
	}

	if _, _, err := svc.ListByPeriod(ctx, to, from, 20, 0); err == nil {
		t.Error("expected error for inverted period")
	}
}
