package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
)

var tracer = otel.Tracer("procurement-repository")

// PurchaseOrderRepositoryWithTracing opens a span around every purchase order
// repository call
type PurchaseOrderRepositoryWithTracing struct {
	next domain.PurchaseOrderRepository
}

// NewPurchaseOrderRepositoryWithTracing wraps next with tracing
func NewPurchaseOrderRepositoryWithTracing(next domain.PurchaseOrderRepository) *PurchaseOrderRepositoryWithTracing {
	return &PurchaseOrderRepositoryWithTracing{next: next}
}

func start(ctx context.Context, name string, id uint) (context.Context, trace.Span) {
	return tracer.Start(ctx, "repository.PurchaseOrder."+name, trace.WithAttributes(attribute.Int("purchase_order.id", int(id))))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *PurchaseOrderRepositoryWithTracing) Create(ctx context.Context, order *domain.PurchaseOrder) error {
	ctx, span := tracer.Start(ctx, "repository.PurchaseOrder.Create", trace.WithAttributes(
		attribute.Int("purchase_order.supplier_id", int(order.SupplierID)),
	))
	err := r.next.Create(ctx, order)
	span.SetAttributes(attribute.String("purchase_order.number", order.PONumber))
	end(span, err)
	return err
}

func (r *PurchaseOrderRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	ctx, span := start(ctx, "FindByID", id)
	order, err := r.next.FindByID(ctx, id)
	end(span, err)
	return order, err
}

func (r *PurchaseOrderRepositoryWithTracing) FindAll(ctx context.Context, filter domain.PurchaseOrderFilter) ([]domain.PurchaseOrder, error) {
	ctx, span := tracer.Start(ctx, "repository.PurchaseOrder.FindAll", trace.WithAttributes(
		attribute.String("filter.status", string(filter.Status)),
		attribute.Int("filter.limit", filter.Limit),
	))
	orders, err := r.next.FindAll(ctx, filter)
	span.SetAttributes(attribute.Int("result.count", len(orders)))
	end(span, err)
	return orders, err
}

func (r *PurchaseOrderRepositoryWithTracing) ListIDs(ctx context.Context) ([]uint, error) {
	ctx, span := tracer.Start(ctx, "repository.PurchaseOrder.ListIDs")
	ids, err := r.next.ListIDs(ctx)
	span.SetAttributes(attribute.Int("result.count", len(ids)))
	end(span, err)
	return ids, err
}

func (r *PurchaseOrderRepositoryWithTracing) LockByID(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	ctx, span := start(ctx, "LockByID", id)
	order, err := r.next.LockByID(ctx, id)
	end(span, err)
	return order, err
}

func (r *PurchaseOrderRepositoryWithTracing) UpdateTotal(ctx context.Context, id uint, total decimal.Decimal, at time.Time) error {
	ctx, span := start(ctx, "UpdateTotal", id)
	span.SetAttributes(attribute.String("purchase_order.total_amount", total.StringFixed(2)))
	err := r.next.UpdateTotal(ctx, id, total, at)
	end(span, err)
	return err
}

func (r *PurchaseOrderRepositoryWithTracing) UpdateStatus(ctx context.Context, id uint, status domain.PurchaseOrderStatus) error {
	ctx, span := start(ctx, "UpdateStatus", id)
	span.SetAttributes(attribute.String("purchase_order.status", string(status)))
	err := r.next.UpdateStatus(ctx, id, status)
	end(span, err)
	return err
}

func (r *PurchaseOrderRepositoryWithTracing) Delete(ctx context.Context, id uint) error {
	ctx, span := start(ctx, "Delete", id)
	err := r.next.Delete(ctx, id)
	end(span, err)
	return err
}

func (r *PurchaseOrderRepositoryWithTracing) CountLines(ctx context.Context, id uint) (int64, error) {
	ctx, span := start(ctx, "CountLines", id)
	n, err := r.next.CountLines(ctx, id)
	end(span, err)
	return n, err
}
