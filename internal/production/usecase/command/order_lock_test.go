package command

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// recordLockingReads collects the table of every SELECT ... FOR UPDATE run
// through db. sqlite drops the clause from the SQL, so it is read off the
// statement instead.
func recordLockingReads(t *testing.T, db *gorm.DB) func() []string {
	t.Helper()
	var (
		mu     sync.Mutex
		tables []string
	)
	err := db.Callback().Query().Before("gorm:query").Register("test:record_locking_reads", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Clauses["FOR"]; ok {
			mu.Lock()
			tables = append(tables, tx.Statement.Table)
			mu.Unlock()
		}
	})
	require.NoError(t, err)

	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), tables...)
	}
}

func TestProductionOrderTransitions_LockTheOrderRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t, f.product(t, "BRACKET").ID, 2)
	locks := recordLockingReads(t, f.db)

	f.start(t, order.ID)
	assert.Equal(t, []string{"production_orders"}, locks())

	completed, err := f.completer().Handle(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.Product, "the response carries the committed order with its product")
	assert.Equal(t, []string{"production_orders", "production_orders"}, locks())
}

func TestCompleteProductionOrder_ConcurrentCompletionsConsumeOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	steel := f.material(t, "STEEL", 100, 0)
	product := f.product(t, "BRACKET")
	f.bom(t, product.ID, steel.ID, "5", "0")
	order := f.order(t, product.ID, 4)
	f.start(t, order.ID)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.completer().Handle(ctx, order.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(80), f.stock(t, steel.ID))
}

func TestChangeOrderStatus_CannotReopenCompletedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	steel := f.material(t, "STEEL", 10, 0)
	product := f.product(t, "BRACKET")
	f.bom(t, product.ID, steel.ID, "1", "0")
	order := f.order(t, product.ID, 3)
	f.start(t, order.ID)

	_, err := f.completer().Handle(ctx, order.ID)
	require.NoError(t, err)

	_, err = NewChangeOrderStatusHandler(f.tx, f.orders, f.evictor).Handle(ctx, ChangeOrderStatusCommand{ID: order.ID, Status: domain.OrderStatusCancelled})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, stored.Status)
	assert.Equal(t, int64(7), f.stock(t, steel.ID))
}
