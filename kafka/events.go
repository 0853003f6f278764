package kafka

import "time"

// Event types
const (
	EventTypePurchaseOrderTotalUpdated = "purchase_order.total_updated"
	EventTypeMaterialStockLow          = "material.stock_low"
	EventTypeGoodsReceived             = "goods.received"
)

// Kafka topics
const (
	TopicPurchaseOrderEvents = "purchase-order-events"
	TopicMaterialEvents      = "material-events"
	TopicGoodsReceived       = "goods-received"
)

// PurchaseOrderTotalUpdatedEvent is emitted after a purchase order total has
// been recomputed and committed
type PurchaseOrderTotalUpdatedEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	PurchaseOrderID uint      `json:"purchase_order_id"`
	PONumber        string    `json:"po_number"`
	TotalAmount     float64   `json:"total_amount"`
	LineCount       int       `json:"line_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// MaterialStockLowEvent is emitted when a stock adjustment leaves a material
// below its minimum level
type MaterialStockLowEvent struct {
	EventID           string    `json:"event_id"`
	EventType         string    `json:"event_type"`
	MaterialID        uint      `json:"material_id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	CurrentStock      int64     `json:"current_stock"`
	MinimumStockLevel int64     `json:"minimum_stock_level"`
	Timestamp         time.Time `json:"timestamp"`
}

// GoodsReceivedEvent is produced by the receiving dock when a delivery for a
// purchase order line is booked in
type GoodsReceivedEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	PurchaseOrderID uint      `json:"purchase_order_id"`
	LineID          uint      `json:"line_id"`
	Quantity        int64     `json:"quantity"`
	ReceivedBy      string    `json:"received_by"`
	Timestamp       time.Time `json:"timestamp"`
}
