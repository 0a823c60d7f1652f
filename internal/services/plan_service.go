package services

import (
	"context"
	"fmt"

	"budgetsip/internal/core"
	"budgetsip/internal/storage"
)

// PlanService manages recurring investment plans and annotates them with
// their next due date.
type PlanService struct {
	storage *storage.SQLiteRepository
}

func NewPlanService(storage *storage.SQLiteRepository) *PlanService {
	return &PlanService{storage: storage}
}

// CreatePlan applies defaults and validates before saving.
func (s *PlanService) CreatePlan(ctx context.Context, p core.RecurringPlan) (int64, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreatePlan(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("save plan: %w", err)
	}
	return id, nil
}

func (s *PlanService) GetPlan(ctx context.Context, id int64, ref core.Date) (core.ScheduledPlan, error) {
	p, err := s.storage.GetPlan(ctx, id)
	if err != nil {
		return core.ScheduledPlan{}, err
	}
	return p.Schedule(ref), nil
}

// ListActivePlans returns active plans in id order, each with its next due
// date relative to ref.
func (s *PlanService) ListActivePlans(ctx context.Context, ref core.Date) ([]core.ScheduledPlan, error) {
	plans, err := s.storage.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	scheduled := make([]core.ScheduledPlan, 0, len(plans))
	for _, p := range plans {
		scheduled = append(scheduled, p.Schedule(ref))
	}
	return scheduled, nil
}

// UpdatePlan replaces the plan's schedule fields. The active flag is kept.
func (s *PlanService) UpdatePlan(ctx context.Context, id int64, p core.RecurringPlan) error {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return err
	}
	return s.storage.UpdatePlan(ctx, id, p)
}

func (s *PlanService) DeletePlan(ctx context.Context, id int64) error {
	return s.storage.DeletePlan(ctx, id)
}
