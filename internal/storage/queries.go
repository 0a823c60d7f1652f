package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"budgetsip/internal/core"
)

// DBTX is satisfied by *sql.DB.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// ---- expenses ----

const expenseColumns = `id, date, amount, category, note, payment_mode`

type ExpenseParams struct {
	Date        core.Date
	Amount      decimal.Decimal
	Category    string
	Note        string
	PaymentMode string
}

const createExpense = `INSERT INTO expenses (date, amount, category, note, payment_mode)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateExpense(ctx context.Context, arg ExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createExpense, arg.Date, arg.Amount, arg.Category, arg.Note, arg.PaymentMode)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const listRecentExpenses = `SELECT ` + expenseColumns + ` FROM expenses
ORDER BY date DESC, id DESC
LIMIT ?`

func (q *Queries) ListRecentExpenses(ctx context.Context, limit int64) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listRecentExpenses, limit)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

const listExpensesBetween = `SELECT ` + expenseColumns + ` FROM expenses
WHERE date BETWEEN ? AND ?
ORDER BY date DESC, id DESC`

func (q *Queries) ListExpensesBetween(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesBetween, from, to)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

const updateExpense = `UPDATE expenses
SET date = ?, amount = ?, category = ?, note = ?, payment_mode = ?
WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, id int64, arg ExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense, arg.Date, arg.Amount, arg.Category, arg.Note, arg.PaymentMode, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- sips ----

const planColumns = `id, scheme_name, platform, amount, sip_day, start_date, frequency, is_active`

type PlanParams struct {
	SchemeName string
	Platform   string
	Amount     decimal.Decimal
	SIPDay     int64
	StartDate  core.Date
	Frequency  string
	IsActive   bool
}

const createPlan = `INSERT INTO sips (scheme_name, platform, amount, sip_day, start_date, frequency, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePlan(ctx context.Context, arg PlanParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createPlan, arg.SchemeName, arg.Platform, arg.Amount, arg.SIPDay, arg.StartDate, arg.Frequency, arg.IsActive)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getPlan = `SELECT ` + planColumns + ` FROM sips WHERE id = ?`

func (q *Queries) GetPlan(ctx context.Context, id int64) (core.RecurringPlan, error) {
	return scanPlan(q.db.QueryRowContext(ctx, getPlan, id))
}

const listActivePlans = `SELECT ` + planColumns + ` FROM sips WHERE is_active = 1 ORDER BY id`

func (q *Queries) ListActivePlans(ctx context.Context) ([]core.RecurringPlan, error) {
	rows, err := q.db.QueryContext(ctx, listActivePlans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []core.RecurringPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// updatePlan leaves is_active untouched; the flag is only set at creation.
const updatePlan = `UPDATE sips
SET scheme_name = ?, platform = ?, amount = ?, sip_day = ?, start_date = ?, frequency = ?
WHERE id = ?`

func (q *Queries) UpdatePlan(ctx context.Context, id int64, arg PlanParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePlan, arg.SchemeName, arg.Platform, arg.Amount, arg.SIPDay, arg.StartDate, arg.Frequency, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deletePlan = `DELETE FROM sips WHERE id = ?`

func (q *Queries) DeletePlan(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePlan, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- stocks ----

const holdingColumns = `id, symbol, platform, units, buy_price, total_invested`

type HoldingParams struct {
	Symbol        string
	Platform      string
	Units         decimal.Decimal
	BuyPrice      decimal.Decimal
	TotalInvested decimal.Decimal
}

const createHolding = `INSERT INTO stocks (symbol, platform, units, buy_price, total_invested)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateHolding(ctx context.Context, arg HoldingParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createHolding, arg.Symbol, arg.Platform, arg.Units, arg.BuyPrice, arg.TotalInvested)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getHolding = `SELECT ` + holdingColumns + ` FROM stocks WHERE id = ?`

func (q *Queries) GetHolding(ctx context.Context, id int64) (core.Holding, error) {
	return scanHolding(q.db.QueryRowContext(ctx, getHolding, id))
}

const listHoldings = `SELECT ` + holdingColumns + ` FROM stocks ORDER BY id`

func (q *Queries) ListHoldings(ctx context.Context) ([]core.Holding, error) {
	rows, err := q.db.QueryContext(ctx, listHoldings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []core.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

const updateHolding = `UPDATE stocks
SET symbol = ?, platform = ?, units = ?, buy_price = ?, total_invested = ?
WHERE id = ?`

func (q *Queries) UpdateHolding(ctx context.Context, id int64, arg HoldingParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateHolding, arg.Symbol, arg.Platform, arg.Units, arg.BuyPrice, arg.TotalInvested, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteHolding = `DELETE FROM stocks WHERE id = ?`

func (q *Queries) DeleteHolding(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteHolding, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- settings ----

const getSetting = `SELECT value FROM settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (decimal.NullDecimal, error) {
	var value decimal.NullDecimal
	err := q.db.QueryRowContext(ctx, getSetting, key).Scan(&value)
	return value, err
}

const upsertSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

func (q *Queries) UpsertSetting(ctx context.Context, key string, value decimal.Decimal) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, key, value)
	return err
}

// ---- scanning ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.Date, &e.Amount, &e.Category, &e.Note, &e.PaymentMode)
	return e, err
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func scanPlan(row rowScanner) (core.RecurringPlan, error) {
	var (
		p         core.RecurringPlan
		sipDay    int64
		frequency string
	)
	err := row.Scan(&p.ID, &p.SchemeName, &p.Platform, &p.Amount, &sipDay, &p.StartDate, &frequency, &p.IsActive)
	p.SIPDay = int(sipDay)
	p.Frequency = core.Frequency(frequency)
	return p, err
}

func scanHolding(row rowScanner) (core.Holding, error) {
	var h core.Holding
	err := row.Scan(&h.ID, &h.Symbol, &h.Platform, &h.Units, &h.BuyPrice, &h.TotalInvested)
	return h, err
}
