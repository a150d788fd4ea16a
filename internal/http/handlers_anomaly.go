package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"claimdesk/internal/anomaly"
	"claimdesk/internal/core"
)

type scoredExpenseView struct {
	anomaly.ScoredExpense
	Severity anomaly.Severity `json:"severity"`
	Flagged  bool             `json:"flagged"`
}

type anomalyReportResponse struct {
	Report   anomaly.Report      `json:"report"`
	Expenses []scoredExpenseView `json:"expenses"`
}

// handleAnomalyReport scores the organization's full expense history and
// returns the scored batch with triage KPIs. Results are cached per org and
// invalidated on any write.
func (s *Server) handleAnomalyReport(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)

	if cached, ok := s.reportCache.Get(reportCacheKey(org)); ok {
		writeJSON(w, r, http.StatusOK, cached.(anomalyReportResponse))
		return
	}

	resp, err := s.buildAnomalyReport(r, org)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build anomaly report", "org_id", org, "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to build anomaly report")
		return
	}

	s.reportCache.SetDefault(reportCacheKey(org), resp)
	writeJSON(w, r, http.StatusOK, resp)
}

// handleAnomalyExport streams the flagged expenses as CSV for finance
// review.
func (s *Server) handleAnomalyExport(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)

	resp, err := s.buildAnomalyReport(r, org)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build anomaly export", "org_id", org, "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to build anomaly export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="flagged-expenses.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "employee", "date", "amount", "category", "description", "score", "severity", "reasons"})
	for _, se := range resp.Expenses {
		if !se.Flagged {
			continue
		}
		_ = cw.Write([]string{
			se.ID,
			se.Employee,
			se.Date.String(),
			strconv.FormatFloat(se.Amount, 'f', 2, 64),
			se.Category,
			se.Description,
			strconv.Itoa(se.SuspicionScore),
			string(se.Severity),
			strings.Join(se.ReasonCodes, ";"),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.ErrorContext(r.Context(), "Failed writing CSV export", "error", err)
	}
}

func (s *Server) buildAnomalyReport(r *http.Request, org string) (anomalyReportResponse, error) {
	expenses, err := s.expenses.ListExpenses(r.Context(), org, core.Status(""))
	if err != nil {
		return anomalyReportResponse{}, fmt.Errorf("list expenses: %w", err)
	}

	scored := anomaly.Score(expenses)
	views := make([]scoredExpenseView, 0, len(scored))
	for _, se := range scored {
		views = append(views, scoredExpenseView{
			ScoredExpense: se,
			Severity:      anomaly.SeverityFor(se.SuspicionScore),
			Flagged:       anomaly.Flagged(se.SuspicionScore),
		})
	}

	return anomalyReportResponse{
		Report:   anomaly.BuildReport(scored),
		Expenses: views,
	}, nil
}

func reportCacheKey(org string) string {
	return "report:" + org
}

// invalidateReports drops the cached anomaly report after a write so the
// next dashboard read rescores against fresh data.
func (s *Server) invalidateReports(org string) {
	s.reportCache.Delete(reportCacheKey(org))
}
