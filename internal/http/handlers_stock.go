package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"budgetsip/internal/core"
	applog "budgetsip/internal/log"
)

const msgHoldingRequired = "symbol, units, buy_price are required"

type holdingRequest struct {
	Symbol   string           `json:"symbol" validate:"required,max=32"`
	Units    *decimal.Decimal `json:"units" validate:"required"`
	BuyPrice *decimal.Decimal `json:"buy_price" validate:"required"`
	Platform string           `json:"platform" validate:"max=100"`
}

// decodeHolding reads a holding body. Any total_invested sent by the client
// is ignored; the services derive it.
func decodeHolding(w http.ResponseWriter, r *http.Request) (core.Holding, error) {
	var req holdingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return core.Holding{}, err
	}
	req.Symbol = strings.TrimSpace(req.Symbol)
	if err := validateRequest(&req, msgHoldingRequired); err != nil {
		return core.Holding{}, err
	}
	return core.Holding{
		Symbol:   req.Symbol,
		Platform: req.Platform,
		Units:    *req.Units,
		BuyPrice: *req.BuyPrice,
	}, nil
}

func (s *Server) handleCreateHolding(w http.ResponseWriter, r *http.Request) {
	h, err := decodeHolding(w, r)
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpCreate, err)
		return
	}

	id, err := s.svc.Holdings.CreateHolding(r.Context(), h)
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpCreate, err)
		return
	}

	logMutation(r, applog.ComponentHolding, applog.OpCreate, id)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id, Message: "stock added"})
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.svc.Holdings.ListHoldings(r.Context())
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpList, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(holdings))
}

func (s *Server) handleGetHolding(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpRead, err)
		return
	}

	h, err := s.svc.Holdings.GetHolding(r.Context(), id)
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpRead, err)
		return
	}

	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpUpdate, err)
		return
	}

	h, err := decodeHolding(w, r)
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpUpdate, err)
		return
	}

	if err := s.svc.Holdings.UpdateHolding(r.Context(), id, h); err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpUpdate, err)
		return
	}

	logMutation(r, applog.ComponentHolding, applog.OpUpdate, id)
	writeMessage(w, "stock updated")
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpDelete, err)
		return
	}

	if err := s.svc.Holdings.DeleteHolding(r.Context(), id); err != nil {
		writeFailure(w, r, applog.ComponentHolding, applog.OpDelete, err)
		return
	}

	logMutation(r, applog.ComponentHolding, applog.OpDelete, id)
	writeMessage(w, "stock deleted")
}
