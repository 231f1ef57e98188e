package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/valueobject"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps domain errors to HTTP statuses: validation failures to 400,
// missing aggregates to 404, version races and illegal transitions to 409.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case apperror.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case apperror.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case apperror.IsConflict(err), errors.Is(err, valueobject.ErrInvalidStatusTransition):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.Validation("invalid request body: %s", err.Error())
	}
	return nil
}
