package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"budgetsip/internal/core"
	"budgetsip/internal/storage"
)

// UpcomingWindowDays is the look-ahead of the summary's upcoming plan list.
const UpcomingWindowDays = 7

// SummaryService derives month-bounded totals and the budget position.
type SummaryService struct {
	storage *storage.SQLiteRepository
}

func NewSummaryService(storage *storage.SQLiteRepository) *SummaryService {
	return &SummaryService{storage: storage}
}

// Budget returns the configured monthly budget, zero when unset.
func (s *SummaryService) Budget(ctx context.Context) (decimal.Decimal, error) {
	budget, _, err := s.storage.GetSetting(ctx, core.SettingMonthlyBudget)
	return budget, err
}

// SetBudget inserts or replaces the monthly budget.
func (s *SummaryService) SetBudget(ctx context.Context, budget decimal.Decimal) error {
	return s.storage.PutSetting(ctx, core.SettingMonthlyBudget, budget)
}

// MonthExpenseTotal sums the expenses dated within ref's month.
func (s *SummaryService) MonthExpenseTotal(ctx context.Context, ref core.Date) (decimal.Decimal, error) {
	start, end := core.MonthBounds(ref)
	expenses, err := s.storage.ListExpensesBetween(ctx, start, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("month expenses: %w", err)
	}
	return sumExpenses(expenses), nil
}

// BudgetStatus compares the monthly budget with ref's month spend.
func (s *SummaryService) BudgetStatus(ctx context.Context, ref core.Date) (core.BudgetStatus, error) {
	var budget, total decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budget, err = s.Budget(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.MonthExpenseTotal(gctx, ref)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.BudgetStatus{}, err
	}

	return core.NewBudgetStatus(budget, total), nil
}

// Summary builds the dashboard view for ref. The reads are independent and
// run concurrently without a shared transaction.
func (s *SummaryService) Summary(ctx context.Context, ref core.Date) (core.Summary, error) {
	var (
		budget, monthTotal decimal.Decimal
		holdings           []core.Holding
		plans              []core.RecurringPlan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budget, err = s.Budget(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		monthTotal, err = s.MonthExpenseTotal(gctx, ref)
		return err
	})
	g.Go(func() error {
		var err error
		holdings, err = s.storage.ListHoldings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = s.storage.ListActivePlans(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	stockTotal := decimal.Zero
	for _, h := range holdings {
		stockTotal = stockTotal.Add(h.TotalInvested)
	}

	sipTotal := decimal.Zero
	for _, p := range plans {
		sipTotal = sipTotal.Add(p.Amount)
	}

	status := core.NewBudgetStatus(budget, monthTotal)
	return core.Summary{
		MonthExpenseTotal:  monthTotal,
		TotalStockInvested: stockTotal,
		TotalSIPInvested:   sipTotal,
		Budget:             status.Budget,
		Remaining:          status.Remaining,
		UpcomingSIPs:       UpcomingPlans(plans, ref, UpcomingWindowDays),
	}, nil
}

// UpcomingPlans returns the plans whose next due date falls within
// [ref, ref+days], ordered by due date then id. The result is never nil.
func UpcomingPlans(plans []core.RecurringPlan, ref core.Date, days int) []core.ScheduledPlan {
	upcoming := make([]core.ScheduledPlan, 0)
	for _, p := range plans {
		sp := p.Schedule(ref)
		if core.DueWithin(sp.NextDueDate, ref, days) {
			upcoming = append(upcoming, sp)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i], upcoming[j]
		if !a.NextDueDate.Equal(b.NextDueDate) {
			return a.NextDueDate.Before(b.NextDueDate)
		}
		return a.ID < b.ID
	})
	return upcoming
}

func sumExpenses(expenses []core.Expense) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount
	}
	return core.Sum(amounts...)
}
