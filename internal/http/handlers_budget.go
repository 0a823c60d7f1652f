package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	applog "budgetsip/internal/log"
)

// budgetRequest stores zero when budget is omitted.
type budgetRequest struct {
	Budget decimal.Decimal `json:"budget"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	ref, err := s.refDate(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentBudget, applog.OpRead, err)
		return
	}

	status, err := s.svc.Summary.BudgetStatus(r.Context(), ref)
	if err != nil {
		writeFailure(w, r, applog.ComponentBudget, applog.OpRead, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, r, applog.ComponentBudget, applog.OpUpdate, err)
		return
	}

	if err := s.svc.Summary.SetBudget(r.Context(), req.Budget); err != nil {
		writeFailure(w, r, applog.ComponentBudget, applog.OpUpdate, err)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentBudget).InfoContext(r.Context(), "Monthly budget updated",
		applog.NewFields().WithOperation(applog.OpUpdate).WithAmount(req.Budget).ToSlice()...)
	writeMessage(w, "budget updated")
}

// handleSummary returns the dashboard view for ?date= (default today).
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ref, err := s.refDate(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentBudget, applog.OpRead, err)
		return
	}

	summary, err := s.svc.Summary.Summary(r.Context(), ref)
	if err != nil {
		writeFailure(w, r, applog.ComponentBudget, applog.OpRead, err)
		return
	}

	summary.UpcomingSIPs = nonNil(summary.UpcomingSIPs)
	writeJSON(w, http.StatusOK, summary)
}
