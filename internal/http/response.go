package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetsip/internal/core"
	applog "budgetsip/internal/log"
	"budgetsip/internal/storage"
)

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// domainErrors are invariant violations reported to the caller as 400.
var domainErrors = []error{
	core.ErrInvalidDate,
	core.ErrInvalidSIPDay,
	core.ErrEmptySchemeName,
	core.ErrEmptySymbol,
	core.ErrNegativeUnits,
	core.ErrNegativeBuyPrice,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps err to a status and error body. Unexpected errors are
// logged and hidden behind a generic message.
func writeFailure(w http.ResponseWriter, r *http.Request, entity, op string, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, reqErr.msg)
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, entity+" not found")
		return
	}

	for _, target := range domainErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	logger := applog.FromContext(r.Context()).WithComponent(entity)
	applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, op, nil)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
