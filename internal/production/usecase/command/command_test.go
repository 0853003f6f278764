package command

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	invrepo "github.com/tair/manufacturing-erp/internal/inventory/repository"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/repository"
	"github.com/tair/manufacturing-erp/internal/testutil"
	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
)

type fixture struct {
	db          *gorm.DB
	tx          *database.TxManager
	products    domain.ProductRepository
	boms        domain.BOMRepository
	orders      domain.ProductionOrderRepository
	workCenters domain.WorkCenterRepository
	materials   inventory.MaterialRepository
	evictor     *UsageEvictor
	events      *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	boms := repository.NewGormBOMRepository(db)
	return &fixture{
		db:          db,
		tx:          database.NewTxManager(db),
		products:    repository.NewGormProductRepository(db),
		boms:        boms,
		orders:      repository.NewGormProductionOrderRepository(db),
		workCenters: repository.NewGormWorkCenterRepository(db),
		materials:   invrepo.NewGormMaterialRepository(db),
		evictor:     NewUsageEvictor(boms, nil),
		events:      &recordingPublisher{},
	}
}

func (f *fixture) material(t *testing.T, sku string, stock, minimum int64) *inventory.Material {
	t.Helper()
	m := &inventory.Material{
		SKU:               sku,
		Name:              "Material " + sku,
		MaterialTypeID:    1,
		UnitOfMeasureID:   1,
		CurrentStock:      stock,
		MinimumStockLevel: minimum,
		Status:            inventory.MaterialStatusActive,
	}
	require.NoError(t, f.db.Create(m).Error)
	return m
}

func (f *fixture) product(t *testing.T, sku string) *domain.Product {
	t.Helper()
	product, err := NewCreateProductHandler(f.products).Handle(context.Background(), CreateProductCommand{SKU: sku, Name: "Product " + sku})
	require.NoError(t, err)
	return product
}

func (f *fixture) bom(t *testing.T, productID, materialID uint, qty, waste string) *domain.BOMEntry {
	t.Helper()
	entry, err := NewCreateBOMEntryHandler(f.products, f.materials, f.boms, f.evictor).Handle(context.Background(), CreateBOMEntryCommand{
		ProductID:       productID,
		MaterialID:      materialID,
		QuantityNeeded:  decimal.RequireFromString(qty),
		WastePercentage: decimal.RequireFromString(waste),
	})
	require.NoError(t, err)
	return entry
}

func (f *fixture) order(t *testing.T, productID uint, qty int64) *domain.ProductionOrder {
	t.Helper()
	order, err := NewCreateProductionOrderHandler(f.products, f.workCenters, f.orders, f.evictor).Handle(context.Background(), CreateProductionOrderCommand{
		ProductID: productID,
		Quantity:  qty,
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) start(t *testing.T, id uint) {
	t.Helper()
	_, err := NewChangeOrderStatusHandler(f.tx, f.orders, f.evictor).Handle(context.Background(), ChangeOrderStatusCommand{ID: id, Status: domain.OrderStatusInProgress})
	require.NoError(t, err)
}

func (f *fixture) completer() *CompleteProductionOrderHandler {
	return NewCompleteProductionOrderHandler(f.tx, f.orders, f.boms, f.materials, f.events, f.evictor)
}

func (f *fixture) stock(t *testing.T, id uint) int64 {
	t.Helper()
	m, err := f.materials.FindByID(context.Background(), id)
	require.NoError(t, err)
	return m.CurrentStock
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.MaterialStockLowEvent
}

func (p *recordingPublisher) PublishMaterialStockLow(ctx context.Context, event kafka.MaterialStockLowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	f := newFixture(t)
	f.product(t, "BRACKET")

	_, err := NewCreateProductHandler(f.products).Handle(context.Background(), CreateProductCommand{SKU: "BRACKET", Name: "Again"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestDeleteProduct_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.material(t, "STEEL", 10, 0)
	product := f.product(t, "BRACKET")
	entry := f.bom(t, product.ID, m.ID, "1", "0")
	handler := NewDeleteProductHandler(f.products)

	err := handler.Handle(ctx, product.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "BOM entries")

	require.NoError(t, NewDeleteBOMEntryHandler(f.boms, f.evictor).Handle(ctx, entry.ID))
	order := f.order(t, product.ID, 1)

	err = handler.Handle(ctx, product.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "production orders")

	require.NoError(t, NewDeleteProductionOrderHandler(f.orders, f.evictor).Handle(ctx, order.ID))
	require.NoError(t, handler.Handle(ctx, product.ID))

	_, err = f.products.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateBOMEntry_Validation(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "STEEL", 10, 0)
	product := f.product(t, "BRACKET")
	handler := NewCreateBOMEntryHandler(f.products, f.materials, f.boms, f.evictor)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  CreateBOMEntryCommand
		want error
	}{
		{"negative quantity", CreateBOMEntryCommand{ProductID: product.ID, MaterialID: m.ID, QuantityNeeded: decimal.NewFromInt(-1)}, apperror.ErrValidation},
		{"waste above 100", CreateBOMEntryCommand{ProductID: product.ID, MaterialID: m.ID, QuantityNeeded: decimal.NewFromInt(1), WastePercentage: decimal.NewFromInt(101)}, apperror.ErrValidation},
		{"unknown material", CreateBOMEntryCommand{ProductID: product.ID, MaterialID: 999, QuantityNeeded: decimal.NewFromInt(1)}, apperror.ErrValidation},
		{"unknown product", CreateBOMEntryCommand{ProductID: 999, MaterialID: m.ID, QuantityNeeded: decimal.NewFromInt(1)}, apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateBOMEntry_DuplicateMaterial(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "STEEL", 10, 0)
	product := f.product(t, "BRACKET")
	f.bom(t, product.ID, m.ID, "1", "0")

	_, err := NewCreateBOMEntryHandler(f.products, f.materials, f.boms, f.evictor).Handle(context.Background(), CreateBOMEntryCommand{
		ProductID:      product.ID,
		MaterialID:     m.ID,
		QuantityNeeded: decimal.NewFromInt(2),
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCreateProductionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.product(t, "BRACKET")
	handler := NewCreateProductionOrderHandler(f.products, f.workCenters, f.orders, f.evictor)

	order := f.order(t, product.ID, 12)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Regexp(t, `^MO-[0-9A-F]{8}$`, order.OrderNumber)

	_, err := handler.Handle(ctx, CreateProductionOrderCommand{ProductID: product.ID, Quantity: 0})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = handler.Handle(ctx, CreateProductionOrderCommand{ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	wc := uint(42)
	_, err = handler.Handle(ctx, CreateProductionOrderCommand{ProductID: product.ID, Quantity: 1, WorkCenterID: &wc})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	inactive := domain.ProductStatusInactive
	_, err = NewUpdateProductHandler(f.products).Handle(ctx, UpdateProductCommand{ID: product.ID, Status: &inactive})
	require.NoError(t, err)
	_, err = handler.Handle(ctx, CreateProductionOrderCommand{ProductID: product.ID, Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestChangeOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, f.product(t, "BRACKET").ID, 3)
	handler := NewChangeOrderStatusHandler(f.tx, f.orders, f.evictor)

	_, err := handler.Handle(ctx, ChangeOrderStatusCommand{ID: order.ID, Status: domain.OrderStatusCompleted})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = handler.Handle(ctx, ChangeOrderStatusCommand{ID: order.ID, Status: "DONE"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	started, err := handler.Handle(ctx, ChangeOrderStatusCommand{ID: order.ID, Status: domain.OrderStatusInProgress})
	require.NoError(t, err)
	assert.NotNil(t, started.ActualStart)

	_, err = handler.Handle(ctx, ChangeOrderStatusCommand{ID: order.ID, Status: domain.OrderStatusPending})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	cancelled, err := handler.Handle(ctx, ChangeOrderStatusCommand{ID: order.ID, Status: domain.OrderStatusCancelled})
	require.NoError(t, err)
	assert.NotNil(t, cancelled.ActualEnd)

	_, err = handler.Handle(ctx, ChangeOrderStatusCommand{ID: order.ID, Status: domain.OrderStatusInProgress})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCompleteProductionOrder_ConsumesMaterials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	steel := f.material(t, "STEEL", 30, 20)
	paint := f.material(t, "PAINT", 10, 0)
	product := f.product(t, "BRACKET")
	f.bom(t, product.ID, steel.ID, "2.5", "10")
	f.bom(t, product.ID, paint.ID, "0.3", "0")
	order := f.order(t, product.ID, 4)

	_, err := f.completer().Handle(ctx, order.ID)
	require.ErrorIs(t, err, apperror.ErrConflict, "pending orders are started before completion")

	f.start(t, order.ID)
	completed, err := f.completer().Handle(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCompleted, completed.Status)
	assert.NotNil(t, completed.ActualEnd)
	// 4 * 2.5 * 1.10 = 11
	assert.Equal(t, int64(19), f.stock(t, steel.ID))
	// 4 * 0.3 = 1.2, rounded up
	assert.Equal(t, int64(8), f.stock(t, paint.ID))

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "STEEL", f.events.events[0].SKU)
	assert.Equal(t, int64(19), f.events.events[0].CurrentStock)

	_, err = f.completer().Handle(ctx, order.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCompleteProductionOrder_ShortStockRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	paint := f.material(t, "PAINT", 10, 0)
	steel := f.material(t, "STEEL", 5, 0)
	product := f.product(t, "BRACKET")
	f.bom(t, product.ID, paint.ID, "1", "0")
	f.bom(t, product.ID, steel.ID, "2.5", "10")
	order := f.order(t, product.ID, 4)
	f.start(t, order.ID)

	_, err := f.completer().Handle(ctx, order.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)

	assert.Equal(t, int64(10), f.stock(t, paint.ID))
	assert.Equal(t, int64(5), f.stock(t, steel.ID))

	reloaded, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInProgress, reloaded.Status)
	assert.Empty(t, f.events.events)
}

func TestOperationsAndQualityChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, f.product(t, "BRACKET").ID, 2)

	wc, err := NewCreateWorkCenterHandler(f.workCenters).Handle(ctx, CreateWorkCenterCommand{
		Code:            "CNC-1",
		Name:            "CNC mill",
		CapacityPerHour: decimal.RequireFromString("12.5"),
	})
	require.NoError(t, err)

	addOp := NewAddOperationHandler(f.orders, f.workCenters)
	first, err := addOp.Handle(ctx, AddOperationCommand{ProductionOrderID: order.ID, WorkCenterID: &wc.ID, Name: "Cut", PlannedMinutes: 30})
	require.NoError(t, err)
	second, err := addOp.Handle(ctx, AddOperationCommand{ProductionOrderID: order.ID, Name: "Weld"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, 2, second.Sequence)

	_, err = addOp.Handle(ctx, AddOperationCommand{ProductionOrderID: order.ID, Name: " "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	record := NewRecordQualityCheckHandler(f.orders)
	_, err = record.Handle(ctx, RecordQualityCheckCommand{ProductionOrderID: order.ID, Inspector: "qa", Result: domain.QualityResultFail, SampleSize: 2, DefectCount: 3})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = record.Handle(ctx, RecordQualityCheckCommand{ProductionOrderID: order.ID, Inspector: "qa", Result: "MAYBE"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	check, err := record.Handle(ctx, RecordQualityCheckCommand{ProductionOrderID: order.ID, Inspector: "qa", Result: domain.QualityResultPass, SampleSize: 10})
	require.NoError(t, err)
	assert.False(t, check.CheckedAt.IsZero())

	loaded, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Operations, 2)
	assert.Len(t, loaded.QualityChecks, 1)

	err = NewDeleteProductionOrderHandler(f.orders, f.evictor).Handle(ctx, order.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	err = NewDeleteWorkCenterHandler(f.workCenters).Handle(ctx, wc.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "operations")
}

func TestDeleteWorkCenter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	handler := NewDeleteWorkCenterHandler(f.workCenters)

	assert.ErrorIs(t, handler.Handle(ctx, 7), apperror.ErrNotFound)

	wc, err := NewCreateWorkCenterHandler(f.workCenters).Handle(ctx, CreateWorkCenterCommand{Code: "PAINT-1", Name: "Paint booth"})
	require.NoError(t, err)
	require.NoError(t, handler.Handle(ctx, wc.ID))
}
