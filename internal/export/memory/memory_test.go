package memory

import (
	"context"
	"testing"

	"claimdesk/internal/export"
)

func TestSink_Append(t *testing.T) {
	s := New()

	ref, err := s.Append(context.Background(), export.Row{Employee: "emp-1", Amount: 42})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "row-1" {
		t.Errorf("Append() ref = %q, want row-1", ref)
	}

	ref, err = s.Append(context.Background(), export.Row{Employee: "emp-2", Amount: 99})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "row-2" {
		t.Errorf("Append() ref = %q, want row-2", ref)
	}

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("Rows() = %d rows, want 2", len(rows))
	}
	if rows[0].Employee != "emp-1" || rows[1].Employee != "emp-2" {
		t.Errorf("Rows() order unexpected: %+v", rows)
	}
}

func TestRowFromExpense(t *testing.T) {
	// Guard against dropping a column when the row shape changes.
	row := export.Row{Date: "2024-03-12", OrgID: "org-1", Employee: "emp-1",
		Description: "taxi", Amount: 18.5, Category: "travel", Vendor: "City Cabs"}

	s := New()
	if _, err := s.Append(context.Background(), row); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	got := s.Rows()[0]
	if got != row {
		t.Errorf("stored row = %+v, want %+v", got, row)
	}
}
