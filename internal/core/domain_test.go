package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validExpense() ExpenseRecord {
	return ExpenseRecord{
		ID:          "5b2c0e1a-1111-4222-8333-444455556666",
		OrgID:       "org-1",
		Employee:    "emp-9",
		Amount:      42.50,
		Category:    "travel",
		Vendor:      "City Cabs",
		Description: "Airport taxi",
		Date:        NewDate(2024, 3, 12),
		Status:      StatusSubmitted,
	}
}

func TestExpenseRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ExpenseRecord)
		wantErr error
	}{
		{"valid", func(e *ExpenseRecord) {}, nil},
		{"missing org", func(e *ExpenseRecord) { e.OrgID = "  " }, ErrEmptyOrg},
		{"missing employee", func(e *ExpenseRecord) { e.Employee = "" }, ErrEmptyEmployee},
		{"negative amount", func(e *ExpenseRecord) { e.Amount = -1 }, ErrInvalidAmount},
		{"missing category", func(e *ExpenseRecord) { e.Category = "" }, ErrEmptyCategory},
		{"missing description", func(e *ExpenseRecord) { e.Description = " " }, ErrEmptyDescription},
		{"description too long", func(e *ExpenseRecord) { e.Description = strings.Repeat("x", 501) }, ErrDescriptionTooLong},
		{"bad status", func(e *ExpenseRecord) { e.Status = "pending" }, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDate_IsWeekend(t *testing.T) {
	tests := []struct {
		name string
		date Date
		want bool
	}{
		{"saturday", NewDate(2024, 1, 13), true},
		{"sunday", NewDate(2024, 1, 14), true},
		{"monday", NewDate(2024, 1, 15), false},
		{"friday", NewDate(2024, 1, 12), false},
		{"zero date", Date{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.date.IsWeekend(); got != tt.want {
				t.Errorf("IsWeekend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDate(t *testing.T) {
	d := NewDate(2024, 2, 29)
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("NewDate(2024, 2, 29) = %v", d)
	}
}
