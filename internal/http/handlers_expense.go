package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"budgetsip/internal/core"
	applog "budgetsip/internal/log"
)

const (
	msgExpenseRequired       = "amount is required"
	msgExpenseUpdateRequired = "amount, date are required"
)

type expenseRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Date        *core.Date       `json:"date"`
	Category    string           `json:"category" validate:"max=100"`
	Note        string           `json:"note" validate:"max=500"`
	PaymentMode string           `json:"payment_mode" validate:"max=50"`
}

// expenseUpdateRequest carries the full field set; the date is mandatory.
type expenseUpdateRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Date        *core.Date       `json:"date" validate:"required"`
	Category    string           `json:"category" validate:"max=100"`
	Note        string           `json:"note" validate:"max=500"`
	PaymentMode string           `json:"payment_mode" validate:"max=50"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeAndValidate(w, r, &req, msgExpenseRequired); err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpCreate, err)
		return
	}

	e := core.Expense{
		Amount:      *req.Amount,
		Category:    req.Category,
		Note:        req.Note,
		PaymentMode: req.PaymentMode,
	}
	if req.Date != nil && !req.Date.IsZero() {
		e.Date = *req.Date
	} else {
		e.Date = core.Today(s.now())
	}

	id, err := s.svc.Expenses.CreateExpense(r.Context(), e)
	if err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpCreate, err)
		return
	}

	logMutation(r, applog.ComponentExpense, applog.OpCreate, id)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id, Message: "expense added"})
}

// handleListExpenses returns the most recent expenses, or every expense
// within [from, to] when both bounds are given.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, ranged, err := dateRange(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpList, err)
		return
	}

	var expenses []core.Expense
	if ranged {
		expenses, err = s.svc.Expenses.ListExpensesBetween(r.Context(), from, to)
	} else {
		expenses, err = s.svc.Expenses.ListExpenses(r.Context())
	}
	if err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpList, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpRead, err)
		return
	}

	e, err := s.svc.Expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpRead, err)
		return
	}

	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpUpdate, err)
		return
	}

	var req expenseUpdateRequest
	if err := decodeAndValidate(w, r, &req, msgExpenseUpdateRequired); err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpUpdate, err)
		return
	}

	e := core.Expense{
		Date:        *req.Date,
		Amount:      *req.Amount,
		Category:    req.Category,
		Note:        req.Note,
		PaymentMode: req.PaymentMode,
	}
	if err := s.svc.Expenses.UpdateExpense(r.Context(), id, e); err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpUpdate, err)
		return
	}

	logMutation(r, applog.ComponentExpense, applog.OpUpdate, id)
	writeMessage(w, "expense updated")
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpDelete, err)
		return
	}

	if err := s.svc.Expenses.DeleteExpense(r.Context(), id); err != nil {
		writeFailure(w, r, applog.ComponentExpense, applog.OpDelete, err)
		return
	}

	logMutation(r, applog.ComponentExpense, applog.OpDelete, id)
	writeMessage(w, "expense deleted")
}
