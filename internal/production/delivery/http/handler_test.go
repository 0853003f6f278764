package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/production"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/testutil"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type idView struct {
	ID uint `json:"id"`
}

type orderView struct {
	ID          uint   `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Quantity    int64  `json:"quantity"`
}

type api struct {
	t      *testing.T
	db     *gorm.DB
	router *mux.Router
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewDB(t)
	handler, err := production.InitializeHTTPHandler(db, database.NewTxManager(db), domain.DemandPolicy{}, nil, nil, nil, httpx.NewAuthenticator(nil), nil)
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

func (a *api) ok(method, path string, body any, want int, dest any) {
	a.t.Helper()
	code, env := a.do(method, path, body)
	require.Equal(a.t, want, code, env.Error)
	if dest != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, dest))
	}
}

func (a *api) material(sku string, stock, minimum int64) *inventory.Material {
	a.t.Helper()
	kind := &inventory.MaterialType{Name: "Raw " + sku}
	require.NoError(a.t, a.db.Create(kind).Error)
	unit := &inventory.UnitOfMeasure{Name: "Kilogram " + sku, Symbol: "kg"}
	require.NoError(a.t, a.db.Create(unit).Error)

	m := &inventory.Material{
		SKU: sku, Name: "Material " + sku,
		MaterialTypeID: kind.ID, UnitOfMeasureID: unit.ID,
		CurrentStock: stock, MinimumStockLevel: minimum,
		Status: inventory.MaterialStatusActive,
	}
	require.NoError(a.t, a.db.Create(m).Error)
	return m
}

// plant seeds material M, a product using 2 of it at 10% waste and a
// pending order for 10 units
func (a *api) plant() (*inventory.Material, uint, orderView) {
	a.t.Helper()
	m := a.material("STEEL", 100, 20)

	var product idView
	a.ok("POST", "/api/products", map[string]any{"sku": "FRAME", "name": "Frame"}, http.StatusCreated, &product)
	a.ok("POST", fmt.Sprintf("/api/products/%d/bom", product.ID), map[string]any{
		"material_id": m.ID, "quantity_needed": "2", "waste_percentage": "10",
	}, http.StatusCreated, nil)

	var order orderView
	a.ok("POST", "/api/production-orders", map[string]any{"product_id": product.ID, "quantity": 10}, http.StatusCreated, &order)
	return m, product.ID, order
}

func TestMaterialAvailability_OpenOrderCommitsStock(t *testing.T) {
	a := newAPI(t)
	m, _, order := a.plant()
	assert.Equal(t, "PENDING", order.Status)

	var fits domain.AvailabilityResult
	a.ok("GET", fmt.Sprintf("/api/materials/%d/availability?required=50", m.ID), nil, http.StatusOK, &fits)
	assert.Equal(t, m.ID, fits.MaterialID)
	assert.Equal(t, "kg", fits.Unit)
	assert.Equal(t, int64(100), fits.CurrentStock)
	assert.InDelta(t, 22.0, fits.CommittedQuantity, 1e-9)
	assert.InDelta(t, 78.0, fits.AvailableStock, 1e-9)
	assert.Equal(t, 50.0, fits.RequiredQuantity)
	assert.True(t, fits.IsAvailable)
	assert.False(t, fits.IsBelowMinimum)
	assert.Zero(t, fits.Shortfall)

	var short domain.AvailabilityResult
	a.ok("GET", fmt.Sprintf("/api/materials/%d/availability?required=90", m.ID), nil, http.StatusOK, &short)
	assert.False(t, short.IsAvailable)
	assert.InDelta(t, 12.0, short.Shortfall, 1e-9)

	var bare domain.AvailabilityResult
	a.ok("GET", fmt.Sprintf("/api/materials/%d/availability", m.ID), nil, http.StatusOK, &bare)
	assert.Zero(t, bare.RequiredQuantity)
	assert.True(t, bare.IsAvailable)
}

func TestMaterialAvailability_FiguresAreNumbers(t *testing.T) {
	a := newAPI(t)
	m, _, _ := a.plant()

	var raw map[string]any
	a.ok("GET", fmt.Sprintf("/api/materials/%d/availability?required=90", m.ID), nil, http.StatusOK, &raw)
	for _, field := range []string{"current_stock", "minimum_stock_level", "committed_quantity", "available_stock", "required_quantity", "shortfall"} {
		assert.IsType(t, float64(0), raw[field], field)
	}
	assert.IsType(t, false, raw["is_available"])
}

func TestMaterialAvailability_Rejected(t *testing.T) {
	a := newAPI(t)
	m := a.material("STEEL", 10, 0)

	for _, required := range []string{"-1", "abc", "NaN", "Inf"} {
		code, env := a.do("GET", fmt.Sprintf("/api/materials/%d/availability?required=%s", m.ID, required), nil)
		assert.Equal(t, http.StatusBadRequest, code, required)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	}

	code, env := a.do("GET", "/api/materials/999/availability?required=5", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, env.Data)

	code, _ = a.do("GET", "/api/materials/999/usage", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMaterialUsage_ProjectsOpenOrders(t *testing.T) {
	a := newAPI(t)
	m, productID, _ := a.plant()

	var report domain.MaterialUsageReport
	a.ok("GET", fmt.Sprintf("/api/materials/%d/usage", m.ID), nil, http.StatusOK, &report)
	assert.Equal(t, "STEEL", report.SKU)
	require.Len(t, report.Products, 1)
	assert.Equal(t, productID, report.Products[0].ProductID)
	assert.Equal(t, int64(10), report.Products[0].PendingProduction)
	assert.InDelta(t, 22.0, report.TotalProjectedUsage, 1e-9)
}

func TestProductionOrderLifecycle(t *testing.T) {
	a := newAPI(t)
	m, _, order := a.plant()

	var reqs domain.ProductionRequirements
	a.ok("GET", fmt.Sprintf("/api/production-orders/%d/requirements", order.ID), nil, http.StatusOK, &reqs)
	assert.Equal(t, order.OrderNumber, reqs.OrderNumber)
	require.Len(t, reqs.Lines, 1)
	assert.Equal(t, m.ID, reqs.Lines[0].MaterialID)
	assert.InDelta(t, 22.0, reqs.Lines[0].RequiredQuantity, 1e-9)
	assert.True(t, reqs.CanStart)

	code, _ := a.do("POST", fmt.Sprintf("/api/production-orders/%d/complete", order.ID), nil)
	assert.Equal(t, http.StatusConflict, code, "pending orders cannot be completed")

	var started orderView
	a.ok("POST", fmt.Sprintf("/api/production-orders/%d/status", order.ID), map[string]any{"status": "IN_PROGRESS"}, http.StatusOK, &started)
	assert.Equal(t, "IN_PROGRESS", started.Status)

	var done orderView
	a.ok("POST", fmt.Sprintf("/api/production-orders/%d/complete", order.ID), nil, http.StatusOK, &done)
	assert.Equal(t, "COMPLETED", done.Status)

	// completed orders no longer commit stock
	var after domain.AvailabilityResult
	a.ok("GET", fmt.Sprintf("/api/materials/%d/availability", m.ID), nil, http.StatusOK, &after)
	assert.Equal(t, int64(78), after.CurrentStock)
	assert.Zero(t, after.CommittedQuantity)
	assert.InDelta(t, 78.0, after.AvailableStock, 1e-9)

	code, _ = a.do("POST", fmt.Sprintf("/api/production-orders/%d/status", order.ID), map[string]any{"status": "CANCELLED"})
	assert.Equal(t, http.StatusConflict, code)

	var fetched orderView
	a.ok("GET", fmt.Sprintf("/api/production-orders/%d", order.ID), nil, http.StatusOK, &fetched)
	assert.Equal(t, "COMPLETED", fetched.Status)
}

func TestProductionRequests_Rejected(t *testing.T) {
	a := newAPI(t)
	m := a.material("STEEL", 10, 0)

	code, _ := a.do("GET", "/api/production-orders/999", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do("GET", "/api/production-orders/999/requirements", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do("POST", "/api/production-orders/999/complete", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do("POST", "/api/production-orders", map[string]any{"product_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	var product idView
	a.ok("POST", "/api/products", map[string]any{"sku": "FRAME", "name": "Frame"}, http.StatusCreated, &product)

	code, _ = a.do("POST", "/api/production-orders", map[string]any{"product_id": product.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do("POST", fmt.Sprintf("/api/products/%d/bom", product.ID), map[string]any{
		"material_id": m.ID, "quantity_needed": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do("POST", fmt.Sprintf("/api/products/%d/bom", product.ID), map[string]any{
		"material_id": 999, "quantity_needed": "1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}
