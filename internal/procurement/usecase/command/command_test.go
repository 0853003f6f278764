package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	invrepo "github.com/tair/manufacturing-erp/internal/inventory/repository"
	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/internal/procurement/repository"
	"github.com/tair/manufacturing-erp/internal/testutil"
	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
)

type totalsRecorder struct {
	mu     sync.Mutex
	events []kafka.PurchaseOrderTotalUpdatedEvent
	err    error
}

func (r *totalsRecorder) PublishPurchaseOrderTotalUpdated(ctx context.Context, event kafka.PurchaseOrderTotalUpdatedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *totalsRecorder) last() kafka.PurchaseOrderTotalUpdatedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	db        *gorm.DB
	tx        *database.TxManager
	orders    domain.PurchaseOrderRepository
	lines     domain.PurchaseOrderLineRepository
	suppliers domain.SupplierRepository
	materials inventory.MaterialRepository
	totals    *totalsRecorder
	metrics   *Metrics
	deps      *LineHandlers
	supplier  *domain.Supplier
	unitID    uint
	typeID    uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:        db,
		tx:        database.NewTxManager(db),
		orders:    repository.NewPurchaseOrderRepositoryWithTracing(repository.NewGormPurchaseOrderRepository(db)),
		lines:     repository.NewGormPurchaseOrderLineRepository(db),
		suppliers: repository.NewGormSupplierRepository(db),
		materials: invrepo.NewGormMaterialRepository(db),
		totals:    &totalsRecorder{},
		metrics:   NewMetrics(prometheus.NewRegistry()),
	}
	f.deps = NewLineHandlers(f.tx, f.orders, f.lines, f.materials, f.aggregator())

	unit := &inventory.UnitOfMeasure{Name: "Piece", Symbol: "pcs"}
	require.NoError(t, db.Create(unit).Error)
	materialType := &inventory.MaterialType{Name: "Raw"}
	require.NoError(t, db.Create(materialType).Error)
	f.unitID, f.typeID = unit.ID, materialType.ID

	supplier, err := NewCreateSupplierHandler(f.suppliers).Handle(context.Background(), CreateSupplierCommand{
		Code:         "ACME",
		Name:         "Acme Metals",
		ContactEmail: "sales@acme.test",
	})
	require.NoError(t, err)
	f.supplier = supplier
	return f
}

func (f *fixture) aggregator() *Aggregator {
	return NewAggregator(f.orders, f.lines, f.totals, f.metrics)
}

func (f *fixture) material(t *testing.T, sku string, stock int64) *inventory.Material {
	t.Helper()
	m := &inventory.Material{
		SKU:             sku,
		Name:            "Material " + sku,
		MaterialTypeID:  f.typeID,
		UnitOfMeasureID: f.unitID,
		CurrentStock:    stock,
		Status:          inventory.MaterialStatusActive,
	}
	require.NoError(t, f.db.Create(m).Error)
	return m
}

func (f *fixture) order(t *testing.T, lines ...LineInput) *domain.PurchaseOrder {
	t.Helper()
	order, err := NewCreatePurchaseOrderHandler(f.deps, f.suppliers).Handle(context.Background(), CreatePurchaseOrderCommand{
		SupplierID: f.supplier.ID,
		Lines:      lines,
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) total(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	order, err := f.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	return order.TotalAmount
}

func (f *fixture) setStatus(t *testing.T, id uint, statuses ...domain.PurchaseOrderStatus) {
	t.Helper()
	for _, status := range statuses {
		_, err := NewChangePOStatusHandler(f.deps).Handle(context.Background(), ChangePOStatusCommand{ID: id, Status: status})
		require.NoError(t, err)
	}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineChanges_KeepTotalInSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	steel := f.material(t, "STEEL", 0)
	bolts := f.material(t, "BOLTS", 0)
	order := f.order(t)

	first, err := NewAddLineHandler(f.deps).Handle(ctx, AddLineCommand{PurchaseOrderID: order.ID, MaterialID: steel.ID, Quantity: 3, UnitPrice: price("10.50")})
	require.NoError(t, err)
	second, err := NewAddLineHandler(f.deps).Handle(ctx, AddLineCommand{PurchaseOrderID: order.ID, MaterialID: bolts.ID, Quantity: 2, UnitPrice: price("5.25")})
	require.NoError(t, err)
	assert.Equal(t, "42.00", f.total(t, order.ID).StringFixed(2))
	assert.Equal(t, 42.0, f.totals.last().TotalAmount)
	assert.Equal(t, 2, f.totals.last().LineCount)

	require.NoError(t, NewDeleteLineHandler(f.deps).Handle(ctx, DeleteLineCommand{PurchaseOrderID: order.ID, LineID: second.ID}))
	assert.Equal(t, "31.50", f.total(t, order.ID).StringFixed(2))

	qty := int64(7)
	unit := price("0.15")
	_, err = NewUpdateLineHandler(f.deps).Handle(ctx, UpdateLineCommand{PurchaseOrderID: order.ID, LineID: first.ID, Quantity: &qty, UnitPrice: &unit})
	require.NoError(t, err)
	assert.Equal(t, "1.05", f.total(t, order.ID).StringFixed(2))
	assert.Equal(t, order.PONumber, f.totals.last().PONumber)
}

func TestLineChanges_TotalMatchesLinesAfterAnySequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.material(t, "RESIN", 0)
	order := f.order(t, LineInput{MaterialID: m.ID, Quantity: 1, UnitPrice: price("0.10")})

	add := NewAddLineHandler(f.deps)
	update := NewUpdateLineHandler(f.deps)
	remove := NewDeleteLineHandler(f.deps)

	var ids []uint
	for i, p := range []string{"0.20", "19.99", "3.33", "1000.01", "0.07"} {
		line, err := add.Handle(ctx, AddLineCommand{PurchaseOrderID: order.ID, MaterialID: m.ID, Quantity: int64(i + 1), UnitPrice: price(p)})
		require.NoError(t, err)
		ids = append(ids, line.ID)
	}
	qty := int64(11)
	_, err := update.Handle(ctx, UpdateLineCommand{PurchaseOrderID: order.ID, LineID: ids[1], Quantity: &qty})
	require.NoError(t, err)
	require.NoError(t, remove.Handle(ctx, DeleteLineCommand{PurchaseOrderID: order.ID, LineID: ids[3]}))

	lines, err := f.lines.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	want := decimal.Zero
	for _, line := range lines {
		want = want.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
	}
	assert.Equal(t, want.StringFixed(2), f.total(t, order.ID).StringFixed(2))
	// 0.10 + 0.20 + 11*19.99 + 3*3.33 + 5*0.07
	assert.Equal(t, "230.53", f.total(t, order.ID).StringFixed(2))
}

func TestRecomputeTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.material(t, "STEEL", 0)
	order := f.order(t,
		LineInput{MaterialID: m.ID, Quantity: 3, UnitPrice: price("10.50")},
		LineInput{MaterialID: m.ID, Quantity: 2, UnitPrice: price("5.25")},
	)
	handler := NewRecomputeTotalHandler(f.tx, f.orders, f.aggregator())

	// a stale total is repaired
	require.NoError(t, f.db.Model(&domain.PurchaseOrder{}).Where("id = ?", order.ID).Update("total_amount", 1).Error)
	assert.True(t, handler.Handle(ctx, order.ID))
	assert.Equal(t, "42.00", f.total(t, order.ID).StringFixed(2))

	assert.True(t, handler.Handle(ctx, order.ID))
	assert.Equal(t, "42.00", f.total(t, order.ID).StringFixed(2))

	assert.False(t, handler.Handle(ctx, 9999))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.recomputations.WithLabelValues("not_found")))

	written, err := handler.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
}

func TestRecomputeTotal_PublishFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "STEEL", 0)
	order := f.order(t, LineInput{MaterialID: m.ID, Quantity: 4, UnitPrice: price("2.50")})
	f.totals.err = errors.New("broker down")

	assert.True(t, NewRecomputeTotalHandler(f.tx, f.orders, f.aggregator()).Handle(context.Background(), order.ID))
	assert.Equal(t, "10.00", f.total(t, order.ID).StringFixed(2))
}

func TestLineCommands_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.material(t, "STEEL", 0)
	order := f.order(t)
	add := NewAddLineHandler(f.deps)

	tests := []struct {
		name string
		cmd  AddLineCommand
		want error
	}{
		{"zero quantity", AddLineCommand{PurchaseOrderID: order.ID, MaterialID: m.ID, Quantity: 0, UnitPrice: price("1")}, apperror.ErrValidation},
		{"negative price", AddLineCommand{PurchaseOrderID: order.ID, MaterialID: m.ID, Quantity: 1, UnitPrice: price("-0.01")}, apperror.ErrValidation},
		{"unknown material", AddLineCommand{PurchaseOrderID: order.ID, MaterialID: 999, Quantity: 1, UnitPrice: price("1")}, apperror.ErrValidation},
		{"unknown order", AddLineCommand{PurchaseOrderID: 999, MaterialID: m.ID, Quantity: 1, UnitPrice: price("1")}, apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := add.Handle(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	other := f.order(t, LineInput{MaterialID: m.ID, Quantity: 1, UnitPrice: price("1")})
	otherLines, err := f.lines.FindByOrder(ctx, other.ID)
	require.NoError(t, err)
	err = NewDeleteLineHandler(f.deps).Handle(ctx, DeleteLineCommand{PurchaseOrderID: order.ID, LineID: otherLines[0].ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "1.00", f.total(t, other.ID).StringFixed(2))
}

func TestLineCommands_RejectedOnceApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.material(t, "STEEL", 0)
	order := f.order(t, LineInput{MaterialID: m.ID, Quantity: 2, UnitPrice: price("4.00")})
	f.setStatus(t, order.ID, domain.POStatusSubmitted, domain.POStatusApproved)

	_, err := NewAddLineHandler(f.deps).Handle(ctx, AddLineCommand{PurchaseOrderID: order.ID, MaterialID: m.ID, Quantity: 1, UnitPrice: price("1")})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "8.00", f.total(t, order.ID).StringFixed(2))
}

func TestChangePOStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t)
	handler := NewChangePOStatusHandler(f.deps)

	_, err := handler.Handle(ctx, ChangePOStatusCommand{ID: order.ID, Status: domain.POStatusApproved})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	_, err = handler.Handle(ctx, ChangePOStatusCommand{ID: order.ID, Status: "SHIPPED"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = handler.Handle(ctx, ChangePOStatusCommand{ID: 404, Status: domain.POStatusSubmitted})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	updated, err := handler.Handle(ctx, ChangePOStatusCommand{ID: order.ID, Status: domain.POStatusSubmitted})
	require.NoError(t, err)
	assert.Equal(t, domain.POStatusSubmitted, updated.Status)
}

func TestReceiveLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	steel := f.material(t, "STEEL", 5)
	bolts := f.material(t, "BOLTS", 0)
	order := f.order(t,
		LineInput{MaterialID: steel.ID, Quantity: 10, UnitPrice: price("1.00")},
		LineInput{MaterialID: bolts.ID, Quantity: 4, UnitPrice: price("0.50")},
	)
	lines, err := f.lines.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	receive := NewReceiveLineHandler(f.tx, f.orders, f.lines, f.materials)

	_, err = receive.Handle(ctx, ReceiveLineCommand{PurchaseOrderID: order.ID, LineID: lines[0].ID, Quantity: 1})
	require.ErrorIs(t, err, apperror.ErrConflict, "draft orders cannot be received")

	f.setStatus(t, order.ID, domain.POStatusSubmitted, domain.POStatusApproved)

	partial, err := receive.Handle(ctx, ReceiveLineCommand{PurchaseOrderID: order.ID, LineID: lines[0].ID, Quantity: 6, ReceivedBy: "dock-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.LineStatusPartial, partial.Status)

	_, err = receive.Handle(ctx, ReceiveLineCommand{PurchaseOrderID: order.ID, LineID: lines[0].ID, Quantity: 5})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = receive.Handle(ctx, ReceiveLineCommand{PurchaseOrderID: order.ID, LineID: lines[0].ID, Quantity: 4})
	require.NoError(t, err)
	_, err = receive.Handle(ctx, ReceiveLineCommand{PurchaseOrderID: order.ID, LineID: lines[1].ID, Quantity: 4})
	require.NoError(t, err)

	steelNow, err := f.materials.FindByID(ctx, steel.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), steelNow.CurrentStock)
	boltsNow, err := f.materials.FindByID(ctx, bolts.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), boltsNow.CurrentStock)

	received, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.POStatusReceived, received.Status)
	for _, line := range received.Lines {
		assert.Equal(t, domain.LineStatusReceived, line.Status)
	}
}

func TestDeleteGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.material(t, "STEEL", 0)
	order := f.order(t, LineInput{MaterialID: m.ID, Quantity: 1, UnitPrice: price("1")})

	err := NewDeleteSupplierHandler(f.suppliers).Handle(ctx, f.supplier.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "purchase orders")

	err = NewDeletePurchaseOrderHandler(f.orders).Handle(ctx, order.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "lines")

	lines, err := f.lines.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, NewDeleteLineHandler(f.deps).Handle(ctx, DeleteLineCommand{PurchaseOrderID: order.ID, LineID: lines[0].ID}))
	assert.True(t, f.total(t, order.ID).IsZero())

	require.NoError(t, NewDeletePurchaseOrderHandler(f.orders).Handle(ctx, order.ID))
	require.NoError(t, NewDeleteSupplierHandler(f.suppliers).Handle(ctx, f.supplier.ID))
}

func TestCreateSupplier_Validation(t *testing.T) {
	f := newFixture(t)
	handler := NewCreateSupplierHandler(f.suppliers)
	ctx := context.Background()

	_, err := handler.Handle(ctx, CreateSupplierCommand{Code: "", Name: "Nameless"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = handler.Handle(ctx, CreateSupplierCommand{Code: "X", Name: "X", ContactEmail: "nope"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = handler.Handle(ctx, CreateSupplierCommand{Code: "ACME", Name: "Duplicate"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}
