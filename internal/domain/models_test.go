// internal/domain/models_test.go
package domain

import "testing"

func TestEnumsValid(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		check func() bool
	}{
		{"income entry", true, EntryIncome.Valid},
		{"expense entry", true, EntryExpense.Valid},
		{"unknown entry", false, EntryType("transfer").Valid},
		{"empty entry", false, EntryType("").Valid},
		{"hr department", true, DepartmentHR.Valid},
		{"unknown department", false, Department("magic").Valid},
		{"admin role", true, RoleAdmin.Valid},
		{"employee role", true, RoleEmployee.Valid},
		{"unknown role", false, Role("intern").Valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestCategoryVisibleTo(t *testing.T) {
	owner := int64(7)
	own := Category{UserID: &owner}
	global := Category{UserID: nil}

	if !own.VisibleTo(7) {
		t.Error("owner must see own category")
	}
	if own.VisibleTo(8) {
		t.Error("other users must not see a private category")
	}
	if !global.VisibleTo(8) {
		t.Error("everyone must see a global category")
	}
}
