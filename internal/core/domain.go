package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	// DefaultPlatform is used for plans and holdings created without a platform.
	DefaultPlatform = "Groww"

	// SettingMonthlyBudget is the only well-known settings key.
	SettingMonthlyBudget = "monthly_budget"
)

type (
	Frequency string

	Expense struct {
		ID          int64           `json:"id"`
		Date        Date            `json:"date"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Note        string          `json:"note"`
		PaymentMode string          `json:"payment_mode"`
	}

	// RecurringPlan is a systematic investment plan paid on SIPDay every month.
	RecurringPlan struct {
		ID         int64           `json:"id"`
		SchemeName string          `json:"scheme_name"`
		Platform   string          `json:"platform"`
		Amount     decimal.Decimal `json:"amount"`
		SIPDay     int             `json:"sip_day"`
		StartDate  Date            `json:"start_date"`
		Frequency  Frequency       `json:"frequency"`
		IsActive   bool            `json:"is_active"`
	}

	// ScheduledPlan is a plan annotated with its next due date.
	ScheduledPlan struct {
		RecurringPlan
		NextDueDate Date `json:"next_due_date"`
	}

	// Holding is a manually recorded stock position. TotalInvested is derived
	// from Units and BuyPrice and is never set independently.
	Holding struct {
		ID            int64           `json:"id"`
		Symbol        string          `json:"symbol"`
		Platform      string          `json:"platform"`
		Units         decimal.Decimal `json:"units"`
		BuyPrice      decimal.Decimal `json:"buy_price"`
		TotalInvested decimal.Decimal `json:"total_invested"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidSIPDay    = errors.New("sip_day must be between 1 and 31")
	ErrEmptySchemeName  = errors.New("empty scheme name")
	ErrEmptySymbol      = errors.New("empty symbol")
	ErrNegativeUnits    = errors.New("units cannot be negative")
	ErrNegativeBuyPrice = errors.New("buy price cannot be negative")
)

func (e Expense) Validate() error {
	return e.Date.Validate()
}

// WithDefaults fills platform and frequency when omitted.
func (p RecurringPlan) WithDefaults() RecurringPlan {
	p.SchemeName = strings.TrimSpace(p.SchemeName)
	if strings.TrimSpace(p.Platform) == "" {
		p.Platform = DefaultPlatform
	}
	if strings.TrimSpace(string(p.Frequency)) == "" {
		p.Frequency = Monthly
	}
	return p
}

func (p RecurringPlan) Validate() error {
	if p.SchemeName == "" {
		return ErrEmptySchemeName
	}
	if p.SIPDay < 1 || p.SIPDay > 31 {
		return ErrInvalidSIPDay
	}
	if err := p.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	return nil
}

// Normalized uppercases the symbol, defaults the platform and recomputes
// TotalInvested as Units × BuyPrice.
func (h Holding) Normalized() Holding {
	h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
	if strings.TrimSpace(h.Platform) == "" {
		h.Platform = DefaultPlatform
	}
	h.TotalInvested = h.Units.Mul(h.BuyPrice)
	return h
}

func (h Holding) Validate() error {
	if h.Symbol == "" {
		return ErrEmptySymbol
	}
	if h.Units.IsNegative() {
		return ErrNegativeUnits
	}
	if h.BuyPrice.IsNegative() {
		return ErrNegativeBuyPrice
	}
	return nil
}
