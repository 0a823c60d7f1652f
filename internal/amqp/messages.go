package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseAction names the mutation an expense event reports.
type ExpenseAction string

const (
	ExpenseCreated ExpenseAction = "created"
	ExpenseUpdated ExpenseAction = "updated"
	ExpenseDeleted ExpenseAction = "deleted"
)

// ExpenseEvent is a lightweight change notification. Consumers fetch the
// current row from the database by ID.
type ExpenseEvent struct {
	ID        int64         `json:"id"`
	Action    ExpenseAction `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewExpenseEvent creates a new event stamped with the current time
func NewExpenseEvent(id int64, action ExpenseAction) *ExpenseEvent {
	return &ExpenseEvent{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON creates a message from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SIPReminder announces an upcoming recurring plan payment.
type SIPReminder struct {
	PlanID     int64           `json:"plan_id"`
	SchemeName string          `json:"scheme_name"`
	Platform   string          `json:"platform"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    string          `json:"due_date"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (m *SIPReminder) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SIPReminderFromJSON(data []byte) (*SIPReminder, error) {
	var msg SIPReminder
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
