package domain

import "strconv"

// AvailabilityResult is the stock position of a material against a planned
// consumption. Every figure is a plain number.
type AvailabilityResult struct {
	MaterialID        uint    `json:"material_id"`
	MaterialName      string  `json:"material_name"`
	SKU               string  `json:"sku"`
	Unit              string  `json:"unit"`
	CurrentStock      int64   `json:"current_stock"`
	MinimumStockLevel int64   `json:"minimum_stock_level"`
	CommittedQuantity float64 `json:"committed_quantity"`
	AvailableStock    float64 `json:"available_stock"`
	RequiredQuantity  float64 `json:"required_quantity"`
	IsAvailable       bool    `json:"is_available"`
	IsBelowMinimum    bool    `json:"is_below_minimum"`
	Shortfall         float64 `json:"shortfall"`
}

// MaterialUsage is the projected consumption of a material by one product
type MaterialUsage struct {
	ProductID         uint    `json:"product_id"`
	ProductSKU        string  `json:"product_sku"`
	ProductName       string  `json:"product_name"`
	PendingProduction int64   `json:"pending_production"`
	QuantityNeeded    float64 `json:"quantity_needed"`
	WastePercentage   float64 `json:"waste_percentage"`
	ProjectedUsage    float64 `json:"projected_usage"`
}

// MaterialUsageReport lists every product consuming a material
type MaterialUsageReport struct {
	MaterialID          uint            `json:"material_id"`
	MaterialName        string          `json:"material_name"`
	SKU                 string          `json:"sku"`
	Unit                string          `json:"unit"`
	Products            []MaterialUsage `json:"products"`
	TotalProjectedUsage float64         `json:"total_projected_usage"`
}

// RequirementLine is one material needed by a production order
type RequirementLine struct {
	MaterialID       uint    `json:"material_id"`
	SKU              string  `json:"sku"`
	MaterialName     string  `json:"material_name"`
	Unit             string  `json:"unit"`
	RequiredQuantity float64 `json:"required_quantity"`
	CurrentStock     int64   `json:"current_stock"`
	Shortfall        float64 `json:"shortfall"`
	IsAvailable      bool    `json:"is_available"`
}

// ProductionRequirements is the bill of materials of an order scaled to its
// quantity and checked against on-hand stock
type ProductionRequirements struct {
	ProductionOrderID uint              `json:"production_order_id"`
	OrderNumber       string            `json:"order_number"`
	Quantity          int64             `json:"quantity"`
	Lines             []RequirementLine `json:"lines"`
	CanStart          bool              `json:"can_start"`
}

// UsageCacheKey is the cache key of a material's usage report
func UsageCacheKey(materialID uint) string {
	return "usage:" + strconv.FormatUint(uint64(materialID), 10)
}
