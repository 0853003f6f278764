package command

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/logger"
	"github.com/tair/manufacturing-erp/pkg/numeric"
)

// TotalPublisher announces recomputed purchase order totals
type TotalPublisher interface {
	PublishPurchaseOrderTotalUpdated(ctx context.Context, event kafka.PurchaseOrderTotalUpdatedEvent) error
}

// totalUpdate describes a total written inside a transaction, announced after commit
type totalUpdate struct {
	order     *domain.PurchaseOrder
	total     decimal.Decimal
	lineCount int
}

// Aggregator keeps purchase order totals equal to the sum of their lines
type Aggregator struct {
	orders  domain.PurchaseOrderRepository
	lines   domain.PurchaseOrderLineRepository
	events  TotalPublisher
	metrics *Metrics
}

// NewAggregator creates an aggregator. events and metrics may be nil.
func NewAggregator(
	orders domain.PurchaseOrderRepository,
	lines domain.PurchaseOrderLineRepository,
	events TotalPublisher,
	metrics *Metrics,
) *Aggregator {
	return &Aggregator{orders: orders, lines: lines, events: events, metrics: metrics}
}

// recompute sums the lines of an order the caller has already locked and
// writes the total. It must run inside the caller's transaction.
func (a *Aggregator) recompute(ctx context.Context, order *domain.PurchaseOrder) (*totalUpdate, error) {
	lines, err := a.lines.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	total := domain.SumLines(lines)
	now := time.Now().UTC()
	if err := a.orders.UpdateTotal(ctx, order.ID, total, now); err != nil {
		return nil, err
	}
	order.TotalAmount = total
	order.UpdatedAt = now
	return &totalUpdate{order: order, total: total, lineCount: len(lines)}, nil
}

// announce publishes a committed total. Failures are logged only.
func (a *Aggregator) announce(ctx context.Context, update *totalUpdate) {
	a.metrics.recomputed("ok")
	logger.Info(ctx).
		Uint("purchase_order_id", update.order.ID).
		Str("total_amount", update.total.StringFixed(2)).
		Int("lines", update.lineCount).
		Msg("Purchase order total recomputed")

	if a.events == nil {
		return
	}
	amount, _ := numeric.Float64(update.total)
	err := a.events.PublishPurchaseOrderTotalUpdated(ctx, kafka.PurchaseOrderTotalUpdatedEvent{
		PurchaseOrderID: update.order.ID,
		PONumber:        update.order.PONumber,
		TotalAmount:     amount,
		LineCount:       update.lineCount,
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("purchase_order_id", update.order.ID).Msg("Failed to publish total updated event")
	}
}

// RecomputeTotalHandler recomputes one purchase order total on demand
type RecomputeTotalHandler struct {
	tx         *database.TxManager
	orders     domain.PurchaseOrderRepository
	aggregator *Aggregator
}

// NewRecomputeTotalHandler creates a new recompute handler
func NewRecomputeTotalHandler(tx *database.TxManager, orders domain.PurchaseOrderRepository, aggregator *Aggregator) *RecomputeTotalHandler {
	return &RecomputeTotalHandler{tx: tx, orders: orders, aggregator: aggregator}
}

// Handle locks the order, sums its lines and stores the total. It reports
// whether the total was written. A missing order is logged, not returned.
func (h *RecomputeTotalHandler) Handle(ctx context.Context, purchaseOrderID uint) bool {
	var update *totalUpdate
	err := h.tx.Transaction(ctx, func(ctx context.Context) error {
		order, err := h.orders.LockByID(ctx, purchaseOrderID)
		if err != nil {
			return err
		}
		update, err = h.aggregator.recompute(ctx, order)
		return err
	})

	switch {
	case err == nil:
		h.aggregator.announce(ctx, update)
		return true
	case apperror.KindOf(err) == apperror.KindNotFound:
		h.aggregator.metrics.recomputed("not_found")
		logger.Warn(ctx).Uint("purchase_order_id", purchaseOrderID).Msg("Purchase order not found, total not recomputed")
	default:
		h.aggregator.metrics.recomputed("error")
		logger.Error(ctx).Err(err).Uint("purchase_order_id", purchaseOrderID).Msg("Failed to recompute purchase order total")
	}
	return false
}

// RecomputeAll recomputes every purchase order and returns how many totals
// were written
func (h *RecomputeTotalHandler) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := h.orders.ListIDs(ctx)
	if err != nil {
		return 0, apperror.Storage("failed to list purchase orders", err)
	}
	written := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if h.Handle(ctx, id) {
			written++
		}
	}
	return written, nil
}
