package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sologm/engine/pkg/narrative"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status. Encode failures are logged
// and abandoned; headers are already gone by then.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses:
//
//	ValidationError      -> 400
//	NotFoundError        -> 404
//	NoActiveContextError -> 409
//	OracleError          -> 502
//	anything else        -> 500
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		notFound   *narrative.NotFoundError
		validation *narrative.ValidationError
		noContext  *narrative.NoActiveContextError
		oracle     *narrative.OracleError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: validation.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, logger, http.StatusNotFound, ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &noContext):
		writeJSON(w, logger, http.StatusConflict, ErrorResponse{Error: noContext.Error()})
	case errors.As(err, &oracle):
		logger.Error("Oracle operation failed", "error", err)
		writeJSON(w, logger, http.StatusBadGateway, ErrorResponse{Error: oracle.Error()})
	default:
		logger.Error("Unhandled error", "error", err)
		writeJSON(w, logger, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &narrative.ValidationError{Msg: "invalid request body"}
	}
	return nil
}
