package export

import (
	"context"

	"claimdesk/internal/core"
)

// Row is one approved expense flattened for the finance export sheet.
type Row struct {
	Date        string
	OrgID       string
	Employee    string
	Description string
	Amount      float64
	Category    string
	Vendor      string
}

// RowAppender is the outbound port for export sinks.
type RowAppender interface {
	// Append writes one row and returns a sink-specific reference.
	Append(ctx context.Context, row Row) (ref string, err error)
}

// RowFromExpense flattens an expense into an export row.
func RowFromExpense(e core.ExpenseRecord) Row {
	return Row{
		Date:        e.Date.Format("2006-01-02"),
		OrgID:       e.OrgID,
		Employee:    e.Employee,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Vendor:      e.Vendor,
	}
}
