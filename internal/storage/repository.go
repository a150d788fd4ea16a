package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"claimdesk/internal/core"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Export states tracked alongside the review status. Only approved expenses
// move through the export pipeline.
const (
	ExportPending = "pending"
	ExportDone    = "exported"
	ExportError   = "error"
)

const dateLayout = "2006-01-02"

var ErrNotFound = errors.New("expense not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applyMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// applyMigrations brings the schema up to date from the embedded migration
// files. It opens its own short-lived connection so the repository's pooled
// connection never holds the migration lock.
func applyMigrations(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("prepare sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create persists a new expense claim.
func (r *SQLiteRepository) Create(ctx context.Context, e core.ExpenseRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, org_id, employee, amount, category, vendor, description, expense_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OrgID, e.Employee, e.Amount, e.Category, e.Vendor,
		e.Description, e.Date.Format(dateLayout), string(e.Status),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"org_id", e.OrgID,
		"amount", e.Amount,
		"category", e.Category)
	return nil
}

// GetByID returns a single expense, scoped to its organization.
func (r *SQLiteRepository) GetByID(ctx context.Context, orgID, id string) (core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, org_id, employee, amount, category, vendor, description, expense_date, status, created_at
		FROM expenses
		WHERE org_id = ? AND id = ?`, orgID, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return e, nil
}

// ListByOrg returns all expenses of one organization, newest first. An empty
// status lists every review state.
func (r *SQLiteRepository) ListByOrg(ctx context.Context, orgID string, status core.Status) ([]core.ExpenseRecord, error) {
	query := `
		SELECT id, org_id, employee, amount, category, vendor, description, expense_date, status, created_at
		FROM expenses
		WHERE org_id = ?`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY expense_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses for org %s: %w", orgID, err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// UpdateStatus transitions an expense to a new review status. Approving an
// expense also re-arms the export pipeline.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, orgID, id string, status core.Status) error {
	exportState := ExportPending
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET status = ?, export_state = ?, updated_at = CURRENT_TIMESTAMP
		WHERE org_id = ? AND id = ?`,
		string(status), exportState, orgID, id,
	)
	if err != nil {
		return fmt.Errorf("update expense status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Expense status updated", "id", id, "org_id", orgID, "status", status)
	return nil
}

// GetPendingExportExpenses returns approved expenses that have not yet been
// appended to the export sink. Used by the worker as a backstop for lost
// broker messages.
func (r *SQLiteRepository) GetPendingExportExpenses(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, org_id, employee, amount, category, vendor, description, expense_date, status, created_at
		FROM expenses
		WHERE status = ? AND export_state = ?
		ORDER BY created_at
		LIMIT ?`,
		string(core.StatusApproved), ExportPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get pending export expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending expenses: %w", err)
	}
	return out, nil
}

// MarkExported marks an expense as successfully appended to the export sink.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	if err := r.setExportState(ctx, id, ExportDone); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense marked as exported", "id", id)
	return nil
}

// MarkExportError marks an expense as having failed export.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	if err := r.setExportState(ctx, id, ExportError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Expense marked with export error", "id", id)
	return nil
}

func (r *SQLiteRepository) setExportState(ctx context.Context, id, state string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET export_state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		state, id,
	)
	if err != nil {
		return fmt.Errorf("set export state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.ExpenseRecord, error) {
	var (
		e         core.ExpenseRecord
		dateStr   string
		status    string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.OrgID, &e.Employee, &e.Amount, &e.Category,
		&e.Vendor, &e.Description, &dateStr, &status, &createdAt); err != nil {
		return core.ExpenseRecord{}, err
	}
	if d, err := time.Parse(dateLayout, dateStr); err == nil {
		e.Date = core.Date{Time: d}
	}
	// A date that fails to parse stays zero; the scorer treats it as
	// "weekend rule does not apply" rather than an error.
	e.Status = core.Status(status)
	// SQLite's CURRENT_TIMESTAMP is stored as text.
	if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		e.CreatedAt = t
	} else if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = t
	}
	return e, nil
}
