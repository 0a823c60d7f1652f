package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetsip/internal/amqp"
	"budgetsip/internal/core"
	"budgetsip/internal/storage"
)

// ReminderPublisher delivers upcoming payment reminders.
type ReminderPublisher interface {
	PublishSIPReminder(ctx context.Context, msg *amqp.SIPReminder) error
}

// ReminderProcessor publishes one reminder per plan and due date when the
// due date enters the look-ahead window.
type ReminderProcessor struct {
	storage    *storage.SQLiteRepository
	publisher  ReminderPublisher
	windowDays int

	mu   sync.Mutex
	sent map[reminderKey]struct{}
}

type reminderKey struct {
	planID int64
	due    string
}

func NewReminderProcessor(storage *storage.SQLiteRepository, publisher ReminderPublisher, windowDays int) *ReminderProcessor {
	return &ReminderProcessor{
		storage:    storage,
		publisher:  publisher,
		windowDays: windowDays,
		sent:       make(map[reminderKey]struct{}),
	}
}

// ProcessDueReminders publishes reminders for plans due within the window
// starting at now's calendar day. It returns the number of reminders sent.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.publisher == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	plans, err := p.storage.ListActivePlans(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get active plans: %w", err)
	}

	ref := core.Today(now)
	upcoming := UpcomingPlans(plans, ref, p.windowDays)

	slog.InfoContext(ctx, "Processing SIP reminders",
		"total_active", len(plans),
		"upcoming", len(upcoming),
		"reference_date", ref.String())

	p.mu.Lock()
	defer p.mu.Unlock()
	p.forgetBefore(ref)

	sentCount := 0
	for _, sp := range upcoming {
		key := reminderKey{planID: sp.ID, due: sp.NextDueDate.String()}
		if _, done := p.sent[key]; done {
			continue
		}

		msg := &amqp.SIPReminder{
			PlanID:     sp.ID,
			SchemeName: sp.SchemeName,
			Platform:   sp.Platform,
			Amount:     sp.Amount,
			DueDate:    sp.NextDueDate.String(),
			Timestamp:  now,
		}
		if err := p.publisher.PublishSIPReminder(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish SIP reminder",
				"plan_id", sp.ID,
				"due_date", msg.DueDate,
				"error", err)
			continue
		}

		p.sent[key] = struct{}{}
		sentCount++
	}

	slog.InfoContext(ctx, "SIP reminder processing complete",
		"sent", sentCount,
		"total_checked", len(plans))

	return sentCount, nil
}

// forgetBefore drops bookkeeping for due dates already in the past.
func (p *ReminderProcessor) forgetBefore(ref core.Date) {
	for key := range p.sent {
		due, err := core.ParseDate(key.due)
		if err != nil || due.Before(ref) {
			delete(p.sent, key)
		}
	}
}
