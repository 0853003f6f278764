package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/auth"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondJSON_NormalizesDecimals(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, http.StatusOK, Response{
		Success: true,
		Data: struct {
			Total decimal.Decimal `json:"total"`
		}{Total: decimal.RequireFromString("42.00")},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"total":42}}`, rec.Body.String())
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", apperror.NotFound("material", 3), http.StatusNotFound, "material 3 not found"},
		{"in use", apperror.InUse("material", 3, 1, "BOM entries"), http.StatusConflict, "material 3 is in use: referenced by 1 BOM entries"},
		{"validation", apperror.Validation("quantity must be positive"), http.StatusBadRequest, "quantity must be positive"},
		{"storage", apperror.Storage("failed to list materials", errors.New("pq: gone")), http.StatusInternalServerError, "failed to list materials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/materials/3", nil)

			RespondError(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		Quantity int64 `json:"quantity"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":3}`))
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, int64(3), dst.Quantity)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"qty":3}`))
	assert.ErrorIs(t, Decode(req, &dst), apperror.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.ErrorIs(t, Decode(req, &dst), apperror.ErrValidation)
}

func TestPathIDAndQueryFloat(t *testing.T) {
	router := mux.NewRouter()
	var gotID uint
	var gotErr error
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotID, gotErr = PathID(r, "id")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/12", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, uint(12), gotID)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.ErrorIs(t, gotErr, apperror.ErrValidation)

	req := httptest.NewRequest(http.MethodGet, "/?required=12.5", nil)
	v, err := QueryFloat(req, "required", 0)
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	req = httptest.NewRequest(http.MethodGet, "/?required=NaN", nil)
	_, err = QueryFloat(req, "required", 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	v, err = QueryFloat(req, "required", 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetrics_Instrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	handler := m.Instrument("/api/things", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/things", nil))
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/things", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCounter.WithLabelValues("POST", "/api/things", "201")))
}

func TestAuthenticator_Require(t *testing.T) {
	validator := auth.NewValidator("secret", "")
	authn := NewAuthenticator(validator)

	var seen string
	handler := authn.Require(auth.RoleInspector)(func(w http.ResponseWriter, r *http.Request) {
		seen = Username(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	inspector, err := validator.GenerateToken(1, "ivan", auth.RoleInspector, time.Hour)
	require.NoError(t, err)
	viewer, err := validator.GenerateToken(2, "vera", auth.RoleViewer, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden},
		{"allowed", "Bearer " + inspector, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, "ivan", seen)
}

func TestAuthenticator_Disabled(t *testing.T) {
	authn := NewAuthenticator(nil)

	var seen string
	handler := authn.Require(auth.RoleInspector)(func(w http.ResponseWriter, r *http.Request) {
		seen = Username(r.Context())
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "system", seen)
}
