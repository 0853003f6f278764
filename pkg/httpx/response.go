// Package httpx holds the HTTP plumbing shared by every delivery package:
// the response envelope, middlewares, request metrics and role checks.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/logger"
	"github.com/tair/manufacturing-erp/pkg/numeric"
)

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondJSON writes payload with decimal values in Data converted to plain
// numbers.
func RespondJSON(w http.ResponseWriter, status int, payload Response) {
	payload.Data = numeric.Normalize(payload.Data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// RespondError maps err onto a status code and writes the error envelope.
// Server-side failures are logged with their cause.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context()).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	RespondJSON(w, status, Response{
		Success: false,
		Error:   apperror.Message(err),
	})
}

// Decode reads a JSON request body into dst
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is required")
		}
		return apperror.Validation("invalid request body: %v", err)
	}
	return nil
}

// PathID parses a numeric path variable
func PathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// Pagination reads limit and offset query parameters
func Pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// QueryFloat reads a finite float query parameter, returning def when absent
func QueryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperror.Validation("%s must be a finite number", name)
	}
	return v, nil
}
