package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"budgetsip/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("not found")

// DefaultExpenseLimit caps unfiltered expense listings.
const DefaultExpenseLimit = 100

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ---- expenses ----

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := r.queries.CreateExpense(ctx, expenseParams(e))
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", id,
		"date", e.Date.String(),
		"amount", e.Amount.String(),
		"category", e.Category)

	return id, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, notFound(fmt.Errorf("get expense %d: %w", id, err), err)
	}
	return e, nil
}

// ListRecentExpenses returns up to limit expenses, newest first by date then id.
func (r *SQLiteRepository) ListRecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	expenses, err := r.queries.ListRecentExpenses(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w", err)
	}
	return expenses, nil
}

// ListExpensesBetween returns expenses dated within [from, to], newest first.
func (r *SQLiteRepository) ListExpensesBetween(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	expenses, err := r.queries.ListExpensesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses between %s and %s: %w", from, to, err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, e core.Expense) error {
	n, err := r.queries.UpdateExpense(ctx, id, expenseParams(e))
	if err != nil {
		return fmt.Errorf("update expense %d: %w", id, err)
	}
	return affected(n, "expense", id)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return affected(n, "expense", id)
}

// ---- recurring plans ----

func (r *SQLiteRepository) CreatePlan(ctx context.Context, p core.RecurringPlan) (int64, error) {
	id, err := r.queries.CreatePlan(ctx, planParams(p))
	if err != nil {
		return 0, fmt.Errorf("create plan: %w", err)
	}

	slog.DebugContext(ctx, "Recurring plan saved to SQLite",
		"id", id,
		"scheme_name", p.SchemeName,
		"sip_day", p.SIPDay)

	return id, nil
}

func (r *SQLiteRepository) GetPlan(ctx context.Context, id int64) (core.RecurringPlan, error) {
	p, err := r.queries.GetPlan(ctx, id)
	if err != nil {
		return core.RecurringPlan{}, notFound(fmt.Errorf("get plan %d: %w", id, err), err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListActivePlans(ctx context.Context) ([]core.RecurringPlan, error) {
	plans, err := r.queries.ListActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	return plans, nil
}

func (r *SQLiteRepository) UpdatePlan(ctx context.Context, id int64, p core.RecurringPlan) error {
	n, err := r.queries.UpdatePlan(ctx, id, planParams(p))
	if err != nil {
		return fmt.Errorf("update plan %d: %w", id, err)
	}
	return affected(n, "plan", id)
}

func (r *SQLiteRepository) DeletePlan(ctx context.Context, id int64) error {
	n, err := r.queries.DeletePlan(ctx, id)
	if err != nil {
		return fmt.Errorf("delete plan %d: %w", id, err)
	}
	return affected(n, "plan", id)
}

// ---- holdings ----

func (r *SQLiteRepository) CreateHolding(ctx context.Context, h core.Holding) (int64, error) {
	id, err := r.queries.CreateHolding(ctx, holdingParams(h))
	if err != nil {
		return 0, fmt.Errorf("create holding: %w", err)
	}

	slog.DebugContext(ctx, "Holding saved to SQLite",
		"id", id,
		"symbol", h.Symbol,
		"total_invested", h.TotalInvested.String())

	return id, nil
}

func (r *SQLiteRepository) GetHolding(ctx context.Context, id int64) (core.Holding, error) {
	h, err := r.queries.GetHolding(ctx, id)
	if err != nil {
		return core.Holding{}, notFound(fmt.Errorf("get holding %d: %w", id, err), err)
	}
	return h, nil
}

func (r *SQLiteRepository) ListHoldings(ctx context.Context) ([]core.Holding, error) {
	holdings, err := r.queries.ListHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return holdings, nil
}

func (r *SQLiteRepository) UpdateHolding(ctx context.Context, id int64, h core.Holding) error {
	n, err := r.queries.UpdateHolding(ctx, id, holdingParams(h))
	if err != nil {
		return fmt.Errorf("update holding %d: %w", id, err)
	}
	return affected(n, "holding", id)
}

func (r *SQLiteRepository) DeleteHolding(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteHolding(ctx, id)
	if err != nil {
		return fmt.Errorf("delete holding %d: %w", id, err)
	}
	return affected(n, "holding", id)
}

// ---- settings ----

// GetSetting returns the stored value for key and whether it was set.
func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	value, err := r.queries.GetSetting(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get setting %q: %w", key, err)
	}
	if !value.Valid {
		return decimal.Zero, false, nil
	}
	return value.Decimal, true, nil
}

// PutSetting inserts the value for key or replaces the existing one.
func (r *SQLiteRepository) PutSetting(ctx context.Context, key string, value decimal.Decimal) error {
	if err := r.queries.UpsertSetting(ctx, key, value); err != nil {
		return fmt.Errorf("put setting %q: %w", key, err)
	}
	slog.InfoContext(ctx, "Setting updated", "key", key, "value", value.String())
	return nil
}

func expenseParams(e core.Expense) ExpenseParams {
	return ExpenseParams{
		Date:        e.Date,
		Amount:      e.Amount,
		Category:    e.Category,
		Note:        e.Note,
		PaymentMode: e.PaymentMode,
	}
}

func planParams(p core.RecurringPlan) PlanParams {
	return PlanParams{
		SchemeName: p.SchemeName,
		Platform:   p.Platform,
		Amount:     p.Amount,
		SIPDay:     int64(p.SIPDay),
		StartDate:  p.StartDate,
		Frequency:  string(p.Frequency),
		IsActive:   p.IsActive,
	}
}

func holdingParams(h core.Holding) HoldingParams {
	return HoldingParams{
		Symbol:        h.Symbol,
		Platform:      h.Platform,
		Units:         h.Units,
		BuyPrice:      h.BuyPrice,
		TotalInvested: h.TotalInvested,
	}
}

func notFound(wrapped, cause error) error {
	if errors.Is(cause, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, wrapped)
	}
	return wrapped
}

func affected(n int64, entity string, id int64) error {
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}
