package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"claimdesk/internal/core"
	"claimdesk/internal/services"
	"claimdesk/internal/storage"
)

type createExpenseRequest struct {
	Employee    string `json:"employee"`
	Amount      any    `json:"amount"`
	Category    string `json:"category"`
	Vendor      string `json:"vendor"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type createExpenseResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseRequestAmount(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid amount")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	expense := core.ExpenseRecord{
		OrgID:       orgID(r),
		Employee:    req.Employee,
		Amount:      amount,
		Category:    req.Category,
		Vendor:      req.Vendor,
		Description: req.Description,
		Date:        date,
	}

	id, err := s.expenses.SubmitExpense(r.Context(), expense)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) ||
			errors.Is(err, core.ErrEmptyEmployee) ||
			errors.Is(err, core.ErrEmptyCategory) ||
			errors.Is(err, core.ErrEmptyDescription) ||
			errors.Is(err, core.ErrDescriptionTooLong) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to submit expense", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateReports(orgID(r))
	writeJSON(w, r, http.StatusCreated, createExpenseResponse{ID: id})
}

// parseRequestAmount accepts a JSON number or a decimal string; the write
// path is strict so malformed amounts never enter through the API.
func parseRequestAmount(v any) (float64, error) {
	switch amount := v.(type) {
	case float64:
		if amount <= 0 {
			return 0, core.ErrInvalidAmount
		}
		return amount, nil
	case string:
		return core.ParseAmount(amount)
	default:
		return 0, core.ErrInvalidAmount
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	status := core.Status(r.URL.Query().Get("status"))
	if status != "" && status != core.StatusSubmitted && status != core.StatusApproved && status != core.StatusRejected {
		writeError(w, r, http.StatusBadRequest, "unknown status filter")
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), orgID(r), status)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []core.ExpenseRecord{}
	}
	writeJSON(w, r, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.expenses.GetExpense(r.Context(), orgID(r), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load expense", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to load expense")
		return
	}
	writeJSON(w, r, http.StatusOK, expense)
}

func (s *Server) handleApproveExpense(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.expenses.ApproveExpense)
}

func (s *Server) handleRejectExpense(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.expenses.RejectExpense)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request, review func(ctx context.Context, orgID, id string) error) {
	id := r.PathValue("id")
	if err := review(r.Context(), orgID(r), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "expense not found")
		case errors.Is(err, services.ErrAlreadyReviewed):
			writeError(w, r, http.StatusConflict, "expense already reviewed")
		default:
			slog.ErrorContext(r.Context(), "Failed to review expense", "id", id, "error", err)
			writeError(w, r, http.StatusInternalServerError, "failed to review expense")
		}
		return
	}

	s.invalidateReports(orgID(r))
	w.WriteHeader(http.StatusNoContent)
}
