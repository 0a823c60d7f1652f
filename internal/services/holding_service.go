package services

import (
	"context"
	"fmt"

	"budgetsip/internal/core"
	"budgetsip/internal/storage"
)

// HoldingService manages stock holdings. The invested total is always
// recomputed from units and buy price before a row is written.
type HoldingService struct {
	storage *storage.SQLiteRepository
}

func NewHoldingService(storage *storage.SQLiteRepository) *HoldingService {
	return &HoldingService{storage: storage}
}

func (s *HoldingService) CreateHolding(ctx context.Context, h core.Holding) (int64, error) {
	h = h.Normalized()
	if err := h.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateHolding(ctx, h)
	if err != nil {
		return 0, fmt.Errorf("save holding: %w", err)
	}
	return id, nil
}

func (s *HoldingService) GetHolding(ctx context.Context, id int64) (core.Holding, error) {
	return s.storage.GetHolding(ctx, id)
}

func (s *HoldingService) ListHoldings(ctx context.Context) ([]core.Holding, error) {
	return s.storage.ListHoldings(ctx)
}

func (s *HoldingService) UpdateHolding(ctx context.Context, id int64, h core.Holding) error {
	h = h.Normalized()
	if err := h.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateHolding(ctx, id, h)
}

func (s *HoldingService) DeleteHolding(ctx context.Context, id int64) error {
	return s.storage.DeleteHolding(ctx, id)
}
