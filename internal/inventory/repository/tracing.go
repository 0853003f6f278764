package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// MaterialRepositoryWithTracing opens a span around every material repository call
type MaterialRepositoryWithTracing struct {
	next domain.MaterialRepository
}

// NewMaterialRepositoryWithTracing wraps next with tracing
func NewMaterialRepositoryWithTracing(next domain.MaterialRepository) *MaterialRepositoryWithTracing {
	return &MaterialRepositoryWithTracing{next: next}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *MaterialRepositoryWithTracing) Create(ctx context.Context, material *domain.Material) error {
	ctx, span := startSpan(ctx, "repository.Material.Create", attribute.String("material.sku", material.SKU))
	err := r.next.Create(ctx, material)
	if err == nil {
		span.SetAttributes(attribute.Int("material.id", int(material.ID)))
	}
	endSpan(span, err)
	return err
}

func (r *MaterialRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Material, error) {
	ctx, span := startSpan(ctx, "repository.Material.FindByID", attribute.Int("material.id", int(id)))
	material, err := r.next.FindByID(ctx, id)
	if err == nil {
		span.SetAttributes(
			attribute.String("material.sku", material.SKU),
			attribute.Int64("material.current_stock", material.CurrentStock),
		)
	}
	endSpan(span, err)
	return material, err
}

func (r *MaterialRepositoryWithTracing) FindAll(ctx context.Context, filter domain.MaterialFilter) ([]domain.Material, error) {
	ctx, span := startSpan(ctx, "repository.Material.FindAll",
		attribute.Int("query.limit", filter.Limit),
		attribute.Int("query.offset", filter.Offset),
		attribute.String("query.status", string(filter.Status)),
	)
	materials, err := r.next.FindAll(ctx, filter)
	span.SetAttributes(attribute.Int("result.count", len(materials)))
	endSpan(span, err)
	return materials, err
}

func (r *MaterialRepositoryWithTracing) FindBelowMinimum(ctx context.Context, limit, offset int) ([]domain.Material, error) {
	ctx, span := startSpan(ctx, "repository.Material.FindBelowMinimum",
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset),
	)
	materials, err := r.next.FindBelowMinimum(ctx, limit, offset)
	span.SetAttributes(attribute.Int("result.count", len(materials)))
	endSpan(span, err)
	return materials, err
}

func (r *MaterialRepositoryWithTracing) Update(ctx context.Context, material *domain.Material) error {
	ctx, span := startSpan(ctx, "repository.Material.Update", attribute.Int("material.id", int(material.ID)))
	err := r.next.Update(ctx, material)
	endSpan(span, err)
	return err
}

func (r *MaterialRepositoryWithTracing) Delete(ctx context.Context, id uint) error {
	ctx, span := startSpan(ctx, "repository.Material.Delete", attribute.Int("material.id", int(id)))
	err := r.next.Delete(ctx, id)
	endSpan(span, err)
	return err
}

func (r *MaterialRepositoryWithTracing) AdjustStock(ctx context.Context, id uint, delta int64) (*domain.Material, error) {
	ctx, span := startSpan(ctx, "repository.Material.AdjustStock",
		attribute.Int("material.id", int(id)),
		attribute.Int64("stock.delta", delta),
	)
	material, err := r.next.AdjustStock(ctx, id, delta)
	if err == nil {
		span.SetAttributes(attribute.Int64("material.current_stock", material.CurrentStock))
	}
	endSpan(span, err)
	return material, err
}

func (r *MaterialRepositoryWithTracing) CountBOMReferences(ctx context.Context, id uint) (int64, error) {
	ctx, span := startSpan(ctx, "repository.Material.CountBOMReferences", attribute.Int("material.id", int(id)))
	count, err := r.next.CountBOMReferences(ctx, id)
	span.SetAttributes(attribute.Int64("result.count", count))
	endSpan(span, err)
	return count, err
}
