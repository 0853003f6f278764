package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/manufacturing-erp/pkg/logger"
)

// Config holds Kafka settings
type Config struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

// Publisher wraps Kafka producer. A nil *Publisher drops every event, which
// is how the service runs without a broker.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

// PublishPurchaseOrderTotalUpdated publishes a recomputed purchase order total
func (p *Publisher) PublishPurchaseOrderTotalUpdated(ctx context.Context, event PurchaseOrderTotalUpdatedEvent) error {
	if p == nil {
		return nil
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypePurchaseOrderTotalUpdated
	event.Timestamp = time.Now().UTC()

	return p.publish(ctx, TopicPurchaseOrderEvents, event.EventType, event.EventID,
		fmt.Sprintf("purchase_order_%d", event.PurchaseOrderID), event,
		attribute.Int64("purchase_order.id", int64(event.PurchaseOrderID)),
		attribute.Float64("purchase_order.total_amount", event.TotalAmount),
	)
}

// PublishMaterialStockLow publishes a low stock warning
func (p *Publisher) PublishMaterialStockLow(ctx context.Context, event MaterialStockLowEvent) error {
	if p == nil {
		return nil
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypeMaterialStockLow
	event.Timestamp = time.Now().UTC()

	return p.publish(ctx, TopicMaterialEvents, event.EventType, event.EventID,
		fmt.Sprintf("material_%d", event.MaterialID), event,
		attribute.Int64("material.id", int64(event.MaterialID)),
		attribute.Int64("material.current_stock", event.CurrentStock),
	)
}

func (p *Publisher) publish(
	ctx context.Context,
	topic, eventType, eventID, key string,
	payload interface{},
	attrs ...attribute.KeyValue,
) error {
	// Start tracing span
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	// Marshal event to JSON
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	// Send message
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "")

	logger.Debug(ctx).
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")
	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
