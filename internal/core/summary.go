package core

import "github.com/shopspring/decimal"

// BudgetStatus compares the configured monthly budget against the month's spend.
type BudgetStatus struct {
	Budget            decimal.Decimal `json:"budget"`
	MonthExpenseTotal decimal.Decimal `json:"month_expense_total"`
	Remaining         decimal.Decimal `json:"remaining"`
}

// Summary is the dashboard view for a reference day.
type Summary struct {
	MonthExpenseTotal  decimal.Decimal `json:"month_expense_total"`
	TotalStockInvested decimal.Decimal `json:"total_stock_invested"`
	TotalSIPInvested   decimal.Decimal `json:"total_sip_invested"`
	Budget             decimal.Decimal `json:"budget"`
	Remaining          decimal.Decimal `json:"remaining"`
	UpcomingSIPs       []ScheduledPlan `json:"upcoming_sips_next_7_days"`
}

// NewBudgetStatus computes the remaining budget. Overspending yields a
// negative remainder.
func NewBudgetStatus(budget, monthTotal decimal.Decimal) BudgetStatus {
	return BudgetStatus{
		Budget:            budget,
		MonthExpenseTotal: monthTotal,
		Remaining:         budget.Sub(monthTotal),
	}
}
