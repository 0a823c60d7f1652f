package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"budgetsip/internal/core"
	applog "budgetsip/internal/log"
)

const msgPlanRequired = "scheme_name, amount, sip_day, start_date are required"

type planRequest struct {
	SchemeName string           `json:"scheme_name" validate:"required,max=200"`
	Amount     *decimal.Decimal `json:"amount" validate:"required"`
	SIPDay     *int             `json:"sip_day" validate:"required"`
	StartDate  *core.Date       `json:"start_date" validate:"required"`
	Platform   string           `json:"platform" validate:"max=100"`
	Frequency  core.Frequency   `json:"frequency" validate:"omitempty,oneof=monthly quarterly yearly"`
	// IsActive is honoured at creation only.
	IsActive *bool `json:"is_active"`
}

func (req *planRequest) normalize() {
	req.SchemeName = strings.TrimSpace(req.SchemeName)
	req.Platform = strings.TrimSpace(req.Platform)
	req.Frequency = core.Frequency(strings.ToLower(strings.TrimSpace(string(req.Frequency))))
	// An empty start date counts as missing.
	if req.StartDate != nil && req.StartDate.IsZero() {
		req.StartDate = nil
	}
}

func (req *planRequest) plan() core.RecurringPlan {
	p := core.RecurringPlan{
		SchemeName: req.SchemeName,
		Platform:   req.Platform,
		Amount:     *req.Amount,
		SIPDay:     *req.SIPDay,
		StartDate:  *req.StartDate,
		Frequency:  req.Frequency,
		IsActive:   true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return p
}

func decodePlan(w http.ResponseWriter, r *http.Request) (core.RecurringPlan, error) {
	var req planRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return core.RecurringPlan{}, err
	}
	req.normalize()
	if err := validateRequest(&req, msgPlanRequired); err != nil {
		return core.RecurringPlan{}, err
	}
	return req.plan(), nil
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	p, err := decodePlan(w, r)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpCreate, err)
		return
	}

	id, err := s.svc.Plans.CreatePlan(r.Context(), p)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpCreate, err)
		return
	}

	logMutation(r, applog.ComponentPlan, applog.OpCreate, id)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id, Message: "sip added"})
}

// handleListPlans returns active plans annotated with their next due date
// relative to ?date= (default today).
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ref, err := s.refDate(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpList, err)
		return
	}

	plans, err := s.svc.Plans.ListActivePlans(r.Context(), ref)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpList, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(plans))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpRead, err)
		return
	}
	ref, err := s.refDate(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpRead, err)
		return
	}

	p, err := s.svc.Plans.GetPlan(r.Context(), id, ref)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpRead, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpUpdate, err)
		return
	}

	p, err := decodePlan(w, r)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpUpdate, err)
		return
	}

	if err := s.svc.Plans.UpdatePlan(r.Context(), id, p); err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpUpdate, err)
		return
	}

	logMutation(r, applog.ComponentPlan, applog.OpUpdate, id)
	writeMessage(w, "sip updated")
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpDelete, err)
		return
	}

	if err := s.svc.Plans.DeletePlan(r.Context(), id); err != nil {
		writeFailure(w, r, applog.ComponentPlan, applog.OpDelete, err)
		return
	}

	logMutation(r, applog.ComponentPlan, applog.OpDelete, id)
	writeMessage(w, "sip deleted")
}
