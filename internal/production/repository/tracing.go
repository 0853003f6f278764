package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/manufacturing-erp/internal/production/domain"
)

var tracer = otel.Tracer("production-repository")

// BOMRepositoryWithTracing opens a span around every BOM repository call
type BOMRepositoryWithTracing struct {
	next domain.BOMRepository
}

// NewBOMRepositoryWithTracing wraps next with tracing
func NewBOMRepositoryWithTracing(next domain.BOMRepository) *BOMRepositoryWithTracing {
	return &BOMRepositoryWithTracing{next: next}
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *BOMRepositoryWithTracing) Create(ctx context.Context, entry *domain.BOMEntry) error {
	ctx, span := tracer.Start(ctx, "repository.BOM.Create", trace.WithAttributes(
		attribute.Int("bom.product_id", int(entry.ProductID)),
		attribute.Int("bom.material_id", int(entry.MaterialID)),
	))
	err := r.next.Create(ctx, entry)
	finish(span, err)
	return err
}

func (r *BOMRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.BOMEntry, error) {
	ctx, span := tracer.Start(ctx, "repository.BOM.FindByID", trace.WithAttributes(attribute.Int("bom.id", int(id))))
	entry, err := r.next.FindByID(ctx, id)
	finish(span, err)
	return entry, err
}

func (r *BOMRepositoryWithTracing) FindByProduct(ctx context.Context, productID uint) ([]domain.BOMEntry, error) {
	ctx, span := tracer.Start(ctx, "repository.BOM.FindByProduct", trace.WithAttributes(attribute.Int("bom.product_id", int(productID))))
	entries, err := r.next.FindByProduct(ctx, productID)
	span.SetAttributes(attribute.Int("result.count", len(entries)))
	finish(span, err)
	return entries, err
}

func (r *BOMRepositoryWithTracing) FindByMaterialWithOpenOrders(
	ctx context.Context,
	materialID uint,
	statuses []domain.ProductionOrderStatus,
) ([]domain.BOMEntry, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	ctx, span := tracer.Start(ctx, "repository.BOM.FindByMaterialWithOpenOrders", trace.WithAttributes(
		attribute.Int("bom.material_id", int(materialID)),
		attribute.StringSlice("production_order.open_statuses", names),
	))
	entries, err := r.next.FindByMaterialWithOpenOrders(ctx, materialID, statuses)
	span.SetAttributes(attribute.Int("result.count", len(entries)))
	finish(span, err)
	return entries, err
}

func (r *BOMRepositoryWithTracing) Update(ctx context.Context, entry *domain.BOMEntry) error {
	ctx, span := tracer.Start(ctx, "repository.BOM.Update", trace.WithAttributes(attribute.Int("bom.id", int(entry.ID))))
	err := r.next.Update(ctx, entry)
	finish(span, err)
	return err
}

func (r *BOMRepositoryWithTracing) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.BOM.Delete", trace.WithAttributes(attribute.Int("bom.id", int(id))))
	err := r.next.Delete(ctx, id)
	finish(span, err)
	return err
}
