// Package events connects procurement commands to the Kafka consumer.
package events

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/internal/procurement/usecase/command"
	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// GoodsReceivedSubscriber books goods.received events as line receipts.
// Kafka delivers at least once, so each event id is applied at most once.
type GoodsReceivedSubscriber struct {
	tx        *database.TxManager
	processed domain.ProcessedEventRepository
	receive   *command.ReceiveLineHandler
}

// NewGoodsReceivedSubscriber creates a new subscriber
func NewGoodsReceivedSubscriber(
	tx *database.TxManager,
	processed domain.ProcessedEventRepository,
	receive *command.ReceiveLineHandler,
) *GoodsReceivedSubscriber {
	return &GoodsReceivedSubscriber{tx: tx, processed: processed, receive: receive}
}

// Register routes goods.received events on consumer to the subscriber
func (s *GoodsReceivedSubscriber) Register(consumer *kafka.Consumer) {
	consumer.RegisterHandler(kafka.EventTypeGoodsReceived, kafka.GoodsReceivedHandler(s.Handle))
}

// Handle receives the goods described by event
func (s *GoodsReceivedSubscriber) Handle(ctx context.Context, event kafka.GoodsReceivedEvent) error {
	ctx = logger.ContextWithRequestID(ctx, event.EventID)
	cmd := command.ReceiveLineCommand{
		PurchaseOrderID: event.PurchaseOrderID,
		LineID:          event.LineID,
		Quantity:        event.Quantity,
		ReceivedBy:      event.ReceivedBy,
	}

	if event.EventID == "" {
		return apperror.Validation("goods received event has no event_id")
	}

	// The event id and the receipt commit together or not at all
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		first, err := s.processed.MarkProcessed(ctx, event.EventID, kafka.EventTypeGoodsReceived)
		if err != nil {
			return apperror.Storage("failed to record goods received event", err)
		}
		if !first {
			logger.Info(ctx).
				Str("event_id", event.EventID).
				Uint("purchase_order_id", event.PurchaseOrderID).
				Msg("Duplicate goods received event skipped")
			return nil
		}

		_, err = s.receive.Handle(ctx, cmd)
		return err
	})
}
