package query

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// ProductionRequirementsQuery asks what an order needs from stock
type ProductionRequirementsQuery struct {
	ProductionOrderID uint
}

// ProductionRequirementsHandler scales the product's BOM to the order quantity
type ProductionRequirementsHandler struct {
	orders domain.ProductionOrderRepository
	boms   domain.BOMRepository
}

// NewProductionRequirementsHandler creates a new requirements handler
func NewProductionRequirementsHandler(orders domain.ProductionOrderRepository, boms domain.BOMRepository) *ProductionRequirementsHandler {
	return &ProductionRequirementsHandler{orders: orders, boms: boms}
}

// Handle compares each requirement with on-hand stock. The order's own demand
// is part of the committed quantity, so lines are checked against current stock.
func (h *ProductionRequirementsHandler) Handle(ctx context.Context, q ProductionRequirementsQuery) (*domain.ProductionRequirements, error) {
	order, err := h.orders.FindByID(ctx, q.ProductionOrderID)
	if err != nil {
		return nil, apperror.Storage("failed to load production order", err)
	}

	entries, err := h.boms.FindByProduct(ctx, order.ProductID)
	if err != nil {
		return nil, apperror.Storage("failed to load bill of materials", err)
	}

	result := &domain.ProductionRequirements{
		ProductionOrderID: order.ID,
		OrderNumber:       order.OrderNumber,
		Quantity:          order.Quantity,
		Lines:             make([]domain.RequirementLine, 0, len(entries)),
		CanStart:          true,
	}

	for _, entry := range entries {
		required := entry.Requirement(order.Quantity)
		line := domain.RequirementLine{
			MaterialID:       entry.MaterialID,
			RequiredQuantity: toFloat(required.Round(4)),
		}
		onHand := decimal.Zero
		if entry.Material != nil {
			line.SKU = entry.Material.SKU
			line.MaterialName = entry.Material.Name
			line.Unit = entry.Material.UnitSymbol()
			line.CurrentStock = entry.Material.CurrentStock
			onHand = decimal.NewFromInt(entry.Material.CurrentStock)
		}
		line.IsAvailable = onHand.GreaterThanOrEqual(required)
		if !line.IsAvailable {
			line.Shortfall = toFloat(required.Sub(onHand).Round(4))
			result.CanStart = false
		}
		result.Lines = append(result.Lines, line)
	}

	return result, nil
}
