package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"budgetsip/internal/core"
)

func TestSummaryService_BudgetStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	expenses := NewExpenseService(repo, nil)
	svc := NewSummaryService(repo)

	ref := core.NewDate(2024, 3, 10)

	status, err := svc.BudgetStatus(ctx, ref)
	if err != nil {
		t.Fatalf("BudgetStatus: %v", err)
	}
	if !status.Budget.IsZero() || !status.Remaining.IsZero() {
		t.Fatalf("unset budget should be zero: %+v", status)
	}

	if err := svc.SetBudget(ctx, decimal.NewFromInt(5000)); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	for _, e := range []core.Expense{
		{Date: core.NewDate(2024, 3, 1), Amount: decimal.NewFromInt(1200)},
		{Date: core.NewDate(2024, 3, 31), Amount: decimal.NewFromInt(2000)},
		{Date: core.NewDate(2024, 2, 29), Amount: decimal.NewFromInt(999)},
		{Date: core.NewDate(2024, 4, 1), Amount: decimal.NewFromInt(999)},
	} {
		if _, err := expenses.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	status, err = svc.BudgetStatus(ctx, ref)
	if err != nil {
		t.Fatalf("BudgetStatus: %v", err)
	}
	if !status.MonthExpenseTotal.Equal(decimal.NewFromInt(3200)) {
		t.Errorf("month total = %s, want 3200", status.MonthExpenseTotal)
	}
	if !status.Remaining.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("remaining = %s, want 1800", status.Remaining)
	}
}

func TestSummaryService_OverspendIsNegative(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	svc := NewSummaryService(repo)

	if err := svc.SetBudget(ctx, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if _, err := NewExpenseService(repo, nil).CreateExpense(ctx, core.Expense{Date: core.NewDate(2024, 3, 2), Amount: decimal.RequireFromString("150.75")}); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	status, err := svc.BudgetStatus(ctx, core.NewDate(2024, 3, 20))
	if err != nil {
		t.Fatalf("BudgetStatus: %v", err)
	}
	if !status.Remaining.Equal(decimal.RequireFromString("-50.75")) {
		t.Errorf("remaining = %s, want -50.75", status.Remaining)
	}
}

func TestSummaryService_Summary(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	svc := NewSummaryService(repo)
	plans := NewPlanService(repo)
	holdings := NewHoldingService(repo)

	ref := core.NewDate(2024, 3, 10)

	mustPlan := func(name string, day int, active bool) int64 {
		t.Helper()
		id, err := plans.CreatePlan(ctx, core.RecurringPlan{
			SchemeName: name,
			Amount:     decimal.NewFromInt(1000),
			SIPDay:     day,
			StartDate:  core.NewDate(2024, 1, 1),
			IsActive:   active,
		})
		if err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
		return id
	}
	inThree := mustPlan("Three", 13, true)
	mustPlan("Eight", 18, true)
	today := mustPlan("Today", 10, true)
	mustPlan("Inactive", 11, false)

	if _, err := holdings.CreateHolding(ctx, core.Holding{Symbol: "tcs", Units: decimal.NewFromInt(2), BuyPrice: decimal.RequireFromString("3500.5")}); err != nil {
		t.Fatalf("CreateHolding: %v", err)
	}
	if _, err := holdings.CreateHolding(ctx, core.Holding{Symbol: "infy", Units: decimal.RequireFromString("0.5"), BuyPrice: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("CreateHolding: %v", err)
	}

	sum, err := svc.Summary(ctx, ref)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if !sum.TotalStockInvested.Equal(decimal.NewFromInt(7501)) {
		t.Errorf("total stock invested = %s, want 7501", sum.TotalStockInvested)
	}
	if !sum.TotalSIPInvested.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("total sip invested = %s, want 3000", sum.TotalSIPInvested)
	}
	if !sum.MonthExpenseTotal.IsZero() || !sum.Budget.IsZero() || !sum.Remaining.IsZero() {
		t.Errorf("expected zero expense and budget figures: %+v", sum)
	}

	if len(sum.UpcomingSIPs) != 2 {
		t.Fatalf("got %d upcoming plans, want 2: %+v", len(sum.UpcomingSIPs), sum.UpcomingSIPs)
	}
	if sum.UpcomingSIPs[0].ID != today || !sum.UpcomingSIPs[0].NextDueDate.Equal(ref) {
		t.Errorf("first upcoming = %+v, want plan %d due today", sum.UpcomingSIPs[0], today)
	}
	if sum.UpcomingSIPs[1].ID != inThree || !sum.UpcomingSIPs[1].NextDueDate.Equal(ref.AddDays(3)) {
		t.Errorf("second upcoming = %+v, want plan %d due in 3 days", sum.UpcomingSIPs[1], inThree)
	}
}

func TestUpcomingPlans_OrderAndEmpty(t *testing.T) {
	ref := core.NewDate(2024, 12, 28)
	plans := []core.RecurringPlan{
		{ID: 3, SIPDay: 2, StartDate: core.NewDate(2024, 1, 1)},
		{ID: 1, SIPDay: 2, StartDate: core.NewDate(2024, 1, 1)},
		{ID: 2, SIPDay: 30, StartDate: core.NewDate(2024, 1, 1)},
		{ID: 4, SIPDay: 20, StartDate: core.NewDate(2024, 1, 1)},
	}

	got := UpcomingPlans(plans, ref, UpcomingWindowDays)
	wantIDs := []int64{2, 1, 3}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d plans, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("position %d: id %d, want %d", i, got[i].ID, id)
		}
	}
	if !got[1].NextDueDate.Equal(core.NewDate(2025, 1, 2)) {
		t.Errorf("year rollover due date = %s, want 2025-01-02", got[1].NextDueDate)
	}

	empty := UpcomingPlans(nil, ref, UpcomingWindowDays)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}
