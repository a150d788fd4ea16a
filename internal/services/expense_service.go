// Package services provides business logic and orchestration for expense
// claims: submission, review transitions and export hand-off.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"claimdesk/internal/core"
)

// ErrAlreadyReviewed is returned when approving or rejecting an expense that
// has already left the submitted state.
var ErrAlreadyReviewed = errors.New("expense already reviewed")

// ExpenseStore is the storage surface the service needs.
type ExpenseStore interface {
	Create(ctx context.Context, e core.ExpenseRecord) error
	GetByID(ctx context.Context, orgID, id string) (core.ExpenseRecord, error)
	ListByOrg(ctx context.Context, orgID string, status core.Status) ([]core.ExpenseRecord, error)
	UpdateStatus(ctx context.Context, orgID, id string, status core.Status) error
}

// ExportPublisher queues approved expenses for asynchronous export.
type ExportPublisher interface {
	PublishExpenseExport(ctx context.Context, id, orgID string) error
}

// ExpenseService orchestrates expense operations across storage and the
// export queue.
type ExpenseService struct {
	store     ExpenseStore
	publisher ExportPublisher
}

func NewExpenseService(store ExpenseStore, publisher ExportPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// SubmitExpense validates and persists a new claim, returning its ID.
func (s *ExpenseService) SubmitExpense(ctx context.Context, e core.ExpenseRecord) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Status = core.StatusSubmitted

	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate expense: %w", err)
	}
	if err := s.store.Create(ctx, e); err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}
	return e.ID, nil
}

// ListExpenses returns one organization's expenses, optionally filtered by
// review status.
func (s *ExpenseService) ListExpenses(ctx context.Context, orgID string, status core.Status) ([]core.ExpenseRecord, error) {
	expenses, err := s.store.ListByOrg(ctx, orgID, status)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// GetExpense returns a single org-scoped expense.
func (s *ExpenseService) GetExpense(ctx context.Context, orgID, id string) (core.ExpenseRecord, error) {
	return s.store.GetByID(ctx, orgID, id)
}

// ApproveExpense transitions a submitted expense to approved and queues it
// for export. A failed publish does not fail the review; the worker's
// pending scan picks the expense up later.
func (s *ExpenseService) ApproveExpense(ctx context.Context, orgID, id string) error {
	if err := s.review(ctx, orgID, id, core.StatusApproved); err != nil {
		return err
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "Export publisher not available, relying on pending scan", "id", id)
		return nil
	}
	if err := s.publisher.PublishExpenseExport(ctx, id, orgID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", id, "org_id", orgID, "error", err)
	}
	return nil
}

// RejectExpense transitions a submitted expense to rejected.
func (s *ExpenseService) RejectExpense(ctx context.Context, orgID, id string) error {
	return s.review(ctx, orgID, id, core.StatusRejected)
}

func (s *ExpenseService) review(ctx context.Context, orgID, id string, to core.Status) error {
	current, err := s.store.GetByID(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if current.Status != core.StatusSubmitted {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyReviewed, id, current.Status)
	}
	if err := s.store.UpdateStatus(ctx, orgID, id, to); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	slog.InfoContext(ctx, "Expense reviewed", "id", id, "org_id", orgID, "status", to)
	return nil
}
