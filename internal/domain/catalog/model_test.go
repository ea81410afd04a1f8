package catalog

import (
	"testing"
	"time"
)

func TestRequiresPrescription(t *testing.T) {
	cases := []struct {
		category string
		want     bool
	}{
		{CategoryPrescription, true},
		{CategoryControlled, true},
		{CategoryOTC, false},
		{CategoryPharmacy, false},
		{CategoryGeneral, false},
	}
	for _, tc := range cases {
		p := &Product{DrugCategory: tc.category, Schedule: ScheduleUnscheduled}
		if got := p.RequiresPrescription(); got != tc.want {
			t.Errorf("category %s: requires prescription = %v, want %v", tc.category, got, tc.want)
		}
	}
}

func TestRequiresPharmacistApproval(t *testing.T) {
	cases := []struct {
		name     string
		category string
		schedule string
		want     bool
	}{
		{"prescription unscheduled", CategoryPrescription, ScheduleUnscheduled, true},
		{"controlled unscheduled", CategoryControlled, ScheduleUnscheduled, true},
		{"otc unscheduled", CategoryOTC, ScheduleUnscheduled, false},
		{"otc schedule 1", CategoryOTC, ScheduleOne, true},
		{"pharmacy schedule 2", CategoryPharmacy, ScheduleTwo, true},
		{"general unscheduled", CategoryGeneral, ScheduleUnscheduled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Product{DrugCategory: tc.category, Schedule: tc.schedule}
			if got := p.RequiresPharmacistApproval(); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsControlled(t *testing.T) {
	p := &Product{DrugCategory: CategoryControlled}
	if !p.IsControlled() {
		t.Error("controlled category should hit the register")
	}
	p.DrugCategory = CategoryPrescription
	if p.IsControlled() {
		t.Error("prescription category alone should not hit the register")
	}
}

func TestRegistrationValid(t *testing.T) {
	now := time.Now()
	p := &Product{}
	if !p.RegistrationValid(now) {
		t.Error("missing registration expiry should be valid")
	}
	past := now.AddDate(0, -2, 0)
	p.PPBRegExpiry = &past
	if p.RegistrationValid(now) {
		t.Error("lapsed registration should not be valid")
	}
}
