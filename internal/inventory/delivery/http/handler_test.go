package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/inventory"
	production "github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/testutil"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type materialView struct {
	ID                uint    `json:"id"`
	SKU               string  `json:"sku"`
	CostPerUnit       float64 `json:"cost_per_unit"`
	CurrentStock      int64   `json:"current_stock"`
	MinimumStockLevel int64   `json:"minimum_stock_level"`
	Status            string  `json:"status"`
}

type api struct {
	t      *testing.T
	db     *gorm.DB
	router *mux.Router
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewDB(t)
	handler, err := inventory.InitializeHTTPHandler(db, nil, nil, httpx.NewAuthenticator(nil), nil)
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return &api{t: t, db: db, router: router}
}

func (a *api) do(method, path string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *api) catalog() (typeID, unitID uint) {
	a.t.Helper()
	var created struct {
		ID uint `json:"id"`
	}
	code, env := a.do("POST", "/api/material-types", map[string]any{"name": "Raw"})
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	require.NoError(a.t, json.Unmarshal(env.Data, &created))
	typeID = created.ID

	code, env = a.do("POST", "/api/units", map[string]any{"name": "Kilogram", "symbol": "kg"})
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	require.NoError(a.t, json.Unmarshal(env.Data, &created))
	return typeID, created.ID
}

func (a *api) createMaterial(body map[string]any) materialView {
	a.t.Helper()
	code, env := a.do("POST", "/api/materials", body)
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	var m materialView
	require.NoError(a.t, json.Unmarshal(env.Data, &m))
	return m
}

func TestMaterialLifecycle(t *testing.T) {
	a := newAPI(t)
	typeID, unitID := a.catalog()

	steel := a.createMaterial(map[string]any{
		"sku": "STEEL-1", "name": "Steel sheet",
		"material_type_id": typeID, "unit_of_measure_id": unitID,
		"cost_per_unit": "12.50", "current_stock": 40, "minimum_stock_level": 10,
	})
	assert.Equal(t, "ACTIVE", steel.Status)
	assert.Equal(t, 12.5, steel.CostPerUnit)

	code, _ := a.do("POST", "/api/materials", map[string]any{
		"sku": "STEEL-1", "name": "Duplicate",
		"material_type_id": typeID, "unit_of_measure_id": unitID,
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env := a.do("POST", fmt.Sprintf("/api/materials/%d/stock", steel.ID), map[string]any{"delta": -35, "reason": "consumed"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var adjusted materialView
	require.NoError(t, json.Unmarshal(env.Data, &adjusted))
	assert.Equal(t, int64(5), adjusted.CurrentStock)

	code, _ = a.do("POST", fmt.Sprintf("/api/materials/%d/stock", steel.ID), map[string]any{"delta": -6})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do("GET", "/api/materials/low-stock", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var low []materialView
	require.NoError(t, json.Unmarshal(env.Data, &low))
	require.Len(t, low, 1)
	assert.Equal(t, "STEEL-1", low[0].SKU)

	code, env = a.do("PUT", fmt.Sprintf("/api/materials/%d", steel.ID), map[string]any{"minimum_stock_level": 5})
	require.Equal(t, http.StatusOK, code, env.Error)
	code, env = a.do("GET", "/api/materials/low-stock", nil)
	require.Equal(t, http.StatusOK, code)
	var none []materialView
	require.NoError(t, json.Unmarshal(env.Data, &none))
	assert.Empty(t, none)
}

func TestDeleteMaterial_ConflictWhileInBOM(t *testing.T) {
	a := newAPI(t)
	typeID, unitID := a.catalog()
	m := a.createMaterial(map[string]any{
		"sku": "BOLT", "name": "Bolt",
		"material_type_id": typeID, "unit_of_measure_id": unitID,
	})

	product := &production.Product{SKU: "CHAIR", Name: "Chair", Status: production.ProductStatusActive}
	require.NoError(t, a.db.Create(product).Error)
	entry := &production.BOMEntry{ProductID: product.ID, MaterialID: m.ID, QuantityNeeded: decimal.NewFromInt(4)}
	require.NoError(t, a.db.Create(entry).Error)

	code, env := a.do("DELETE", fmt.Sprintf("/api/materials/%d", m.ID), nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Error, "in use")

	code, _ = a.do("DELETE", fmt.Sprintf("/api/material-types/%d", typeID), nil)
	assert.Equal(t, http.StatusConflict, code)

	require.NoError(t, a.db.Delete(entry).Error)
	code, env = a.do("DELETE", fmt.Sprintf("/api/materials/%d", m.ID), nil)
	assert.Equal(t, http.StatusOK, code, env.Error)

	code, _ = a.do("GET", fmt.Sprintf("/api/materials/%d", m.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMaterialRequests_Rejected(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do("GET", "/api/materials/999", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do("POST", "/api/materials", map[string]any{"sku": "", "name": "x"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do("POST", "/api/materials/999/stock", map[string]any{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, code)
}
