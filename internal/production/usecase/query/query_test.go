package query

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	invrepo "github.com/tair/manufacturing-erp/internal/inventory/repository"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/repository"
	"github.com/tair/manufacturing-erp/internal/testutil"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

var defaultPolicy = domain.DemandPolicy{}

type plant struct {
	t         *testing.T
	db        *gorm.DB
	materials inventory.MaterialRepository
	boms      domain.BOMRepository
	orders    domain.ProductionOrderRepository
	unitID    uint
	typeID    uint
	seq       int
}

func newPlant(t *testing.T) *plant {
	t.Helper()
	db := testutil.NewDB(t)
	p := &plant{
		t:         t,
		db:        db,
		materials: invrepo.NewGormMaterialRepository(db),
		boms:      repository.NewBOMRepositoryWithTracing(repository.NewGormBOMRepository(db)),
		orders:    repository.NewGormProductionOrderRepository(db),
	}
	unit := &inventory.UnitOfMeasure{Name: "Kilogram", Symbol: "kg"}
	require.NoError(t, db.Create(unit).Error)
	materialType := &inventory.MaterialType{Name: "Raw"}
	require.NoError(t, db.Create(materialType).Error)
	p.unitID, p.typeID = unit.ID, materialType.ID
	return p
}

func (p *plant) material(sku string, stock, minimum int64) *inventory.Material {
	p.t.Helper()
	m := &inventory.Material{
		SKU:               sku,
		Name:              "Material " + sku,
		MaterialTypeID:    p.typeID,
		UnitOfMeasureID:   p.unitID,
		CostPerUnit:       decimal.RequireFromString("3.10"),
		CurrentStock:      stock,
		MinimumStockLevel: minimum,
		Status:            inventory.MaterialStatusActive,
	}
	require.NoError(p.t, p.db.Create(m).Error)
	return m
}

func (p *plant) product(sku string) *domain.Product {
	p.t.Helper()
	product := &domain.Product{SKU: sku, Name: "Product " + sku, Status: domain.ProductStatusActive}
	require.NoError(p.t, p.db.Create(product).Error)
	return product
}

func (p *plant) bom(productID, materialID uint, qty, waste string) *domain.BOMEntry {
	p.t.Helper()
	entry := &domain.BOMEntry{
		ProductID:       productID,
		MaterialID:      materialID,
		QuantityNeeded:  decimal.RequireFromString(qty),
		WastePercentage: decimal.RequireFromString(waste),
	}
	require.NoError(p.t, p.db.Create(entry).Error)
	return entry
}

func (p *plant) order(productID uint, qty int64, status domain.ProductionOrderStatus) *domain.ProductionOrder {
	p.t.Helper()
	p.seq++
	order := &domain.ProductionOrder{
		OrderNumber: "MO-TEST" + string(rune('A'+p.seq)),
		ProductID:   productID,
		Quantity:    qty,
		Status:      status,
	}
	require.NoError(p.t, p.db.Create(order).Error)
	return order
}

func (p *plant) availability(policy domain.DemandPolicy, metrics *Metrics) *MaterialAvailabilityHandler {
	return NewMaterialAvailabilityHandler(p.materials, p.boms, policy, metrics)
}

func TestMaterialAvailability_Scenario(t *testing.T) {
	p := newPlant(t)
	m := p.material("STEEL-01", 100, 20)
	product := p.product("BRACKET")
	p.bom(product.ID, m.ID, "2", "10")
	p.order(product.ID, 10, domain.OrderStatusPending)

	handler := p.availability(defaultPolicy, nil)
	ctx := context.Background()

	enough, err := handler.Handle(ctx, MaterialAvailabilityQuery{MaterialID: m.ID, RequiredQuantity: 50})
	require.NoError(t, err)
	assert.Equal(t, 22.0, enough.CommittedQuantity)
	assert.Equal(t, 78.0, enough.AvailableStock)
	assert.True(t, enough.IsAvailable)
	assert.Zero(t, enough.Shortfall)
	assert.False(t, enough.IsBelowMinimum)
	assert.Equal(t, "kg", enough.Unit)
	assert.Equal(t, int64(100), enough.CurrentStock)

	short, err := handler.Handle(ctx, MaterialAvailabilityQuery{MaterialID: m.ID, RequiredQuantity: 90})
	require.NoError(t, err)
	assert.False(t, short.IsAvailable)
	assert.Equal(t, 12.0, short.Shortfall)
}

func TestMaterialAvailability_MissingMaterial(t *testing.T) {
	p := newPlant(t)

	result, err := p.availability(defaultPolicy, nil).Handle(context.Background(), MaterialAvailabilityQuery{MaterialID: 404, RequiredQuantity: 1})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMaterialAvailability_RejectsInvalidRequired(t *testing.T) {
	p := newPlant(t)
	m := p.material("STEEL-01", 100, 0)

	for _, required := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := p.availability(defaultPolicy, nil).Handle(context.Background(), MaterialAvailabilityQuery{MaterialID: m.ID, RequiredQuantity: required})
		assert.ErrorIs(t, err, apperror.ErrValidation, "required=%v", required)
	}
}

func TestMaterialAvailability_CommitmentIsAdditive(t *testing.T) {
	p := newPlant(t)
	m := p.material("RESIN", 1000, 0)
	chair := p.product("CHAIR")
	table := p.product("TABLE")
	p.bom(chair.ID, m.ID, "1.5", "0")
	p.bom(table.ID, m.ID, "0.25", "12.5")
	p.order(chair.ID, 4, domain.OrderStatusPending)
	p.order(table.ID, 8, domain.OrderStatusInProgress)

	handler := p.availability(defaultPolicy, nil)
	ctx := context.Background()

	before, err := handler.Handle(ctx, MaterialAvailabilityQuery{MaterialID: m.ID})
	require.NoError(t, err)
	// 4*1.5 + 8*0.25*1.125
	assert.Equal(t, 8.25, before.CommittedQuantity)

	p.order(table.ID, 3, domain.OrderStatusPending)
	after, err := handler.Handle(ctx, MaterialAvailabilityQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, 0.84375, after.CommittedQuantity-before.CommittedQuantity)
	assert.Equal(t, before.CurrentStock, after.CurrentStock)
	assert.Equal(t, after.AvailableStock, float64(after.CurrentStock)-after.CommittedQuantity)
}

func TestMaterialAvailability_ClosedOrdersDoNotCommit(t *testing.T) {
	p := newPlant(t)
	m := p.material("WIRE", 50, 0)
	product := p.product("COIL")
	p.bom(product.ID, m.ID, "1", "0")
	p.order(product.ID, 5, domain.OrderStatusCompleted)
	p.order(product.ID, 7, domain.OrderStatusCancelled)
	p.order(product.ID, 11, domain.OrderStatusOnHold)
	p.order(product.ID, 13, domain.OrderStatusActive)

	result, err := p.availability(defaultPolicy, nil).Handle(context.Background(), MaterialAvailabilityQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Zero(t, result.CommittedQuantity)
	assert.Equal(t, 50.0, result.AvailableStock)

	withActive, err := p.availability(domain.DemandPolicy{IncludeActiveOrders: true}, nil).Handle(context.Background(), MaterialAvailabilityQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, 13.0, withActive.CommittedQuantity)
}

func TestMaterialAvailability_Consistency(t *testing.T) {
	p := newPlant(t)
	m := p.material("BOLT", 40, 35)
	product := p.product("FRAME")
	p.bom(product.ID, m.ID, "3", "5")
	p.order(product.ID, 2, domain.OrderStatusPending)

	handler := p.availability(defaultPolicy, nil)
	for _, required := range []float64{0, 10, 33.7, 33.8, 50, 1000} {
		result, err := handler.Handle(context.Background(), MaterialAvailabilityQuery{MaterialID: m.ID, RequiredQuantity: required})
		require.NoError(t, err)

		available := decimal.NewFromInt(result.CurrentStock).Sub(decimal.RequireFromString("6.3"))
		assert.Equal(t, 33.7, result.AvailableStock)
		assert.Equal(t, available.GreaterThanOrEqual(decimal.NewFromFloat(required)), result.IsAvailable, "required=%v", required)
		if result.IsAvailable {
			assert.Zero(t, result.Shortfall)
		} else {
			want, _ := decimal.NewFromFloat(required).Sub(available).Float64()
			assert.Equal(t, want, result.Shortfall)
		}
		assert.True(t, result.IsBelowMinimum)
	}
}

func TestMaterialAvailability_Metrics(t *testing.T) {
	p := newPlant(t)
	m := p.material("NUT", 10, 0)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	handler := p.availability(defaultPolicy, metrics)

	_, err := handler.Handle(context.Background(), MaterialAvailabilityQuery{MaterialID: m.ID, RequiredQuantity: 5})
	require.NoError(t, err)
	_, err = handler.Handle(context.Background(), MaterialAvailabilityQuery{MaterialID: m.ID, RequiredQuantity: 50})
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.availabilityChecks.WithLabelValues("available")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.availabilityChecks.WithLabelValues("shortfall")))
}

func TestMaterialUsage_ProjectsEveryProduct(t *testing.T) {
	p := newPlant(t)
	m := p.material("GLUE", 10, 0)
	shelf := p.product("SHELF")
	desk := p.product("DESK")
	idle := p.product("STOOL")
	p.bom(shelf.ID, m.ID, "0.333", "3")
	p.bom(desk.ID, m.ID, "1.2", "0")
	p.bom(idle.ID, m.ID, "5", "0")
	p.order(shelf.ID, 7, domain.OrderStatusPending)
	p.order(desk.ID, 2, domain.OrderStatusInProgress)
	p.order(desk.ID, 9, domain.OrderStatusCompleted)

	report, err := NewMaterialUsageHandler(p.materials, p.boms, defaultPolicy, nil, nil).Handle(context.Background(), MaterialUsageQuery{MaterialID: m.ID})
	require.NoError(t, err)

	require.Len(t, report.Products, 3)
	byProduct := map[string]float64{}
	pending := map[string]int64{}
	for _, usage := range report.Products {
		byProduct[usage.ProductSKU] = usage.ProjectedUsage
		pending[usage.ProductSKU] = usage.PendingProduction
	}
	// 7 * 0.333 * 1.03 = 2.40093
	assert.Equal(t, 2.4, byProduct["SHELF"])
	assert.Equal(t, 2.4, byProduct["DESK"])
	assert.Zero(t, byProduct["STOOL"])
	assert.Equal(t, int64(2), pending["DESK"])
	assert.Zero(t, pending["STOOL"])
	assert.Equal(t, 4.8, report.TotalProjectedUsage)
	assert.Equal(t, "kg", report.Unit)
}

func TestMaterialUsage_MissingMaterial(t *testing.T) {
	p := newPlant(t)

	_, err := NewMaterialUsageHandler(p.materials, p.boms, defaultPolicy, nil, nil).Handle(context.Background(), MaterialUsageQuery{MaterialID: 99})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProductionRequirements(t *testing.T) {
	p := newPlant(t)
	steel := p.material("STEEL", 100, 0)
	paint := p.material("PAINT", 1, 0)
	product := p.product("GATE")
	p.bom(product.ID, steel.ID, "4", "0")
	p.bom(product.ID, paint.ID, "0.5", "10")
	order := p.order(product.ID, 5, domain.OrderStatusPending)

	reqs, err := NewProductionRequirementsHandler(p.orders, p.boms).Handle(context.Background(), ProductionRequirementsQuery{ProductionOrderID: order.ID})
	require.NoError(t, err)

	assert.False(t, reqs.CanStart)
	require.Len(t, reqs.Lines, 2)
	lines := map[string]domain.RequirementLine{}
	for _, line := range reqs.Lines {
		lines[line.SKU] = line
	}
	assert.Equal(t, 20.0, lines["STEEL"].RequiredQuantity)
	assert.True(t, lines["STEEL"].IsAvailable)
	assert.Equal(t, 2.75, lines["PAINT"].RequiredQuantity)
	assert.Equal(t, 1.75, lines["PAINT"].Shortfall)
}

func TestListProductionOrders_RejectsUnknownStatus(t *testing.T) {
	p := newPlant(t)

	_, err := NewListProductionOrdersHandler(p.orders).Handle(context.Background(), ListProductionOrdersQuery{Status: "LOST"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, 100, clampLimit(1000))
}
