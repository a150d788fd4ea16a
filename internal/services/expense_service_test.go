package services

import (
	"context"
	"errors"
	"testing"

	"claimdesk/internal/core"
	"claimdesk/internal/storage"
)

type fakeStore struct {
	expenses map[string]core.ExpenseRecord
	created  []core.ExpenseRecord
	updates  []core.Status
}

func newFakeStore() *fakeStore {
	return &fakeStore{expenses: make(map[string]core.ExpenseRecord)}
}

func (f *fakeStore) Create(_ context.Context, e core.ExpenseRecord) error {
	f.created = append(f.created, e)
	f.expenses[e.ID] = e
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, orgID, id string) (core.ExpenseRecord, error) {
	e, ok := f.expenses[id]
	if !ok || e.OrgID != orgID {
		return core.ExpenseRecord{}, storage.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListByOrg(_ context.Context, orgID string, status core.Status) ([]core.ExpenseRecord, error) {
	var out []core.ExpenseRecord
	for _, e := range f.expenses {
		if e.OrgID != orgID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, orgID, id string, status core.Status) error {
	e, ok := f.expenses[id]
	if !ok || e.OrgID != orgID {
		return storage.ErrNotFound
	}
	e.Status = status
	f.expenses[id] = e
	f.updates = append(f.updates, status)
	return nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishExpenseExport(_ context.Context, id, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func validExpense(orgID string) core.ExpenseRecord {
	date := core.NewDate(2024, 1, 10)
	return core.ExpenseRecord{
		OrgID:       orgID,
		Employee:    "ada",
		Amount:      42.50,
		Category:    "travel",
		Description: "Taxi to airport",
		Date:        date,
	}
}

func TestSubmitExpenseAssignsIDAndStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewExpenseService(store, &fakePublisher{})

	id, err := svc.SubmitExpense(context.Background(), validExpense("org-1"))
	if err != nil {
		t.Fatalf("SubmitExpense() error = %v", err)
	}
	if id == "" {
		t.Fatal("SubmitExpense() returned empty id")
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d expenses, want 1", len(store.created))
	}
	if got := store.created[0].Status; got != core.StatusSubmitted {
		t.Errorf("stored status = %q, want %q", got, core.StatusSubmitted)
	}
}

func TestSubmitExpenseRejectsInvalid(t *testing.T) {
	store := newFakeStore()
	svc := NewExpenseService(store, &fakePublisher{})

	e := validExpense("org-1")
	e.Employee = ""

	if _, err := svc.SubmitExpense(context.Background(), e); !errors.Is(err, core.ErrEmptyEmployee) {
		t.Errorf("SubmitExpense() error = %v, want ErrEmptyEmployee", err)
	}
	if len(store.created) != 0 {
		t.Errorf("created %d expenses, want 0", len(store.created))
	}
}

func TestApproveExpensePublishesExport(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	id, err := svc.SubmitExpense(context.Background(), validExpense("org-1"))
	if err != nil {
		t.Fatalf("SubmitExpense() error = %v", err)
	}

	if err := svc.ApproveExpense(context.Background(), "org-1", id); err != nil {
		t.Fatalf("ApproveExpense() error = %v", err)
	}
	if got := store.expenses[id].Status; got != core.StatusApproved {
		t.Errorf("status after approval = %q, want %q", got, core.StatusApproved)
	}
	if len(pub.published) != 1 || pub.published[0] != id {
		t.Errorf("published = %v, want [%s]", pub.published, id)
	}
}

func TestApproveExpenseSurvivesPublishFailure(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewExpenseService(store, pub)

	id, _ := svc.SubmitExpense(context.Background(), validExpense("org-1"))

	if err := svc.ApproveExpense(context.Background(), "org-1", id); err != nil {
		t.Fatalf("ApproveExpense() error = %v, want nil on publish failure", err)
	}
	if got := store.expenses[id].Status; got != core.StatusApproved {
		t.Errorf("status = %q, want %q", got, core.StatusApproved)
	}
}

func TestReviewRejectsDoubleReview(t *testing.T) {
	store := newFakeStore()
	svc := NewExpenseService(store, &fakePublisher{})

	id, _ := svc.SubmitExpense(context.Background(), validExpense("org-1"))
	if err := svc.RejectExpense(context.Background(), "org-1", id); err != nil {
		t.Fatalf("RejectExpense() error = %v", err)
	}

	if err := svc.ApproveExpense(context.Background(), "org-1", id); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("second review error = %v, want ErrAlreadyReviewed", err)
	}
}

func TestReviewIsOrgScoped(t *testing.T) {
	store := newFakeStore()
	svc := NewExpenseService(store, &fakePublisher{})

	id, _ := svc.SubmitExpense(context.Background(), validExpense("org-1"))

	if err := svc.ApproveExpense(context.Background(), "org-2", id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cross-org review error = %v, want ErrNotFound", err)
	}
}

func TestListExpensesFiltersByStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewExpenseService(store, &fakePublisher{})

	first, _ := svc.SubmitExpense(context.Background(), validExpense("org-1"))
	if _, err := svc.SubmitExpense(context.Background(), validExpense("org-1")); err != nil {
		t.Fatalf("SubmitExpense() error = %v", err)
	}
	if err := svc.ApproveExpense(context.Background(), "org-1", first); err != nil {
		t.Fatalf("ApproveExpense() error = %v", err)
	}

	approved, err := svc.ListExpenses(context.Background(), "org-1", core.StatusApproved)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(approved) != 1 {
		t.Errorf("approved count = %d, want 1", len(approved))
	}

	all, err := svc.ListExpenses(context.Background(), "org-1", "")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all count = %d, want 2", len(all))
	}
}
