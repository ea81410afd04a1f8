package catalog

import (
	"context"
	"fmt"
	"strings"
)

var validCategories = map[string]bool{
	CategoryPrescription: true, CategoryOTC: true, CategoryControlled: true,
	CategoryPharmacy: true, CategoryGeneral: true,
}

var validSchedules = map[string]bool{
	ScheduleOne: true, ScheduleTwo: true, ScheduleUnscheduled: true,
}

type Service struct {
	products Repository
}

func NewService(products Repository) *Service {
	return &Service{products: products}
}

func (s *Service) Create(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.DrugCategory == "" {
		p.DrugCategory = CategoryGeneral
	}
	if !validCategories[p.DrugCategory] {
		return fmt.Errorf("invalid drug_category: %s", p.DrugCategory)
	}
	if p.Schedule == "" {
		p.Schedule = ScheduleUnscheduled
	}
	if !validSchedules[p.Schedule] {
		return fmt.Errorf("invalid schedule: %s", p.Schedule)
	}
	if p.ListPrice < 0 {
		return fmt.Errorf("list_price cannot be negative")
	}
	if p.PPBRegistration != nil {
		if existing, err := s.products.GetByPPBRegistration(ctx, *p.PPBRegistration); err == nil && existing != nil {
			return fmt.Errorf("ppb_registration already used by product %d", existing.ID)
		}
	}
	p.Active = true
	return s.products.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) GetMany(ctx context.Context, ids []int64) ([]*Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.products.GetByIDs(ctx, ids)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	if p.DrugCategory != "" && !validCategories[p.DrugCategory] {
		return fmt.Errorf("invalid drug_category: %s", p.DrugCategory)
	}
	if p.Schedule != "" && !validSchedules[p.Schedule] {
		return fmt.Errorf("invalid schedule: %s", p.Schedule)
	}
	return s.products.Update(ctx, p)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.products.Deactivate(ctx, id)
}

func (s *Service) Search(ctx context.Context, term, category string, limit, offset int) ([]*Product, int, error) {
	if category != "" && !validCategories[category] {
		return nil, 0, fmt.Errorf("invalid drug_category: %s", category)
	}
	return s.products.Search(ctx, term, category, limit, offset)
}
