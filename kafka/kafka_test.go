package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodsReceivedMessage(t *testing.T, event GoodsReceivedEvent) *sarama.ConsumerMessage {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{
		Topic: TopicGoodsReceived,
		Value: body,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeGoodsReceived)},
			{Key: []byte("event_id"), Value: []byte("evt-1")},
		},
	}
}

func TestDispatch_RoutesByEventType(t *testing.T) {
	c := newConsumer("erp", []string{TopicGoodsReceived})

	var got GoodsReceivedEvent
	c.RegisterHandler(EventTypeGoodsReceived, GoodsReceivedHandler(func(ctx context.Context, event GoodsReceivedEvent) error {
		got = event
		return nil
	}))

	err := c.Dispatch(context.Background(), goodsReceivedMessage(t, GoodsReceivedEvent{PurchaseOrderID: 4, LineID: 9, Quantity: 25}))
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.PurchaseOrderID)
	assert.Equal(t, uint(9), got.LineID)
	assert.Equal(t, int64(25), got.Quantity)
}

func TestDispatch_Failures(t *testing.T) {
	c := newConsumer("erp", nil)

	err := c.Dispatch(context.Background(), goodsReceivedMessage(t, GoodsReceivedEvent{}))
	assert.ErrorIs(t, err, ErrNoHandler)

	err = c.Dispatch(context.Background(), &sarama.ConsumerMessage{Topic: TopicGoodsReceived, Value: []byte(`{}`)})
	assert.Error(t, err)

	boom := errors.New("boom")
	c.RegisterHandler(EventTypeGoodsReceived, func(ctx context.Context, payload []byte) error { return boom })
	err = c.Dispatch(context.Background(), goodsReceivedMessage(t, GoodsReceivedEvent{}))
	assert.ErrorIs(t, err, boom)

	c.RegisterHandler(EventTypeGoodsReceived, GoodsReceivedHandler(func(ctx context.Context, event GoodsReceivedEvent) error { return nil }))
	err = c.Dispatch(context.Background(), &sarama.ConsumerMessage{
		Value:   []byte("not json"),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(EventTypeGoodsReceived)}},
	})
	assert.Error(t, err)
}

func TestPublisher_PurchaseOrderTotalUpdated(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicPurchaseOrderEvents {
			return errors.New("unexpected topic " + msg.Topic)
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event PurchaseOrderTotalUpdatedEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.TotalAmount != 42 || event.EventType != EventTypePurchaseOrderTotalUpdated || event.EventID == "" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer)
	err := p.PublishPurchaseOrderTotalUpdated(context.Background(), PurchaseOrderTotalUpdatedEvent{
		PurchaseOrderID: 1,
		PONumber:        "PO-1",
		TotalAmount:     42,
		LineCount:       2,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer)
	err := p.PublishMaterialStockLow(context.Background(), MaterialStockLowEvent{MaterialID: 3})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.PublishPurchaseOrderTotalUpdated(context.Background(), PurchaseOrderTotalUpdatedEvent{}))
	assert.NoError(t, p.PublishMaterialStockLow(context.Background(), MaterialStockLowEvent{}))
	assert.NoError(t, p.Close())
}
