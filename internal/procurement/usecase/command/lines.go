package command

import (
	"context"

	"github.com/shopspring/decimal"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
)

func validateLine(quantity int64, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return apperror.Validation("quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return apperror.Validation("unit_price cannot be negative")
	}
	return nil
}

func checkMaterial(ctx context.Context, materials inventory.MaterialRepository, id uint) error {
	if _, err := materials.FindByID(ctx, id); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Validation("material %d does not exist", id)
		}
		return err
	}
	return nil
}

// lockEditable locks the order and checks its lines may change
func lockEditable(ctx context.Context, orders domain.PurchaseOrderRepository, id uint) (*domain.PurchaseOrder, error) {
	order, err := orders.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.LinesEditable() {
		return nil, apperror.Conflict("purchase order %s is %s, lines can no longer change", order.PONumber, order.Status)
	}
	return order, nil
}

// lineOf loads a line and checks it belongs to the order
func lineOf(ctx context.Context, lines domain.PurchaseOrderLineRepository, orderID, lineID uint) (*domain.PurchaseOrderLine, error) {
	line, err := lines.FindByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.PurchaseOrderID != orderID {
		return nil, apperror.NotFound("purchase order line", lineID)
	}
	return line, nil
}

// LineHandlers holds what every line command needs
type LineHandlers struct {
	tx         *database.TxManager
	orders     domain.PurchaseOrderRepository
	lines      domain.PurchaseOrderLineRepository
	materials  inventory.MaterialRepository
	aggregator *Aggregator
}

// NewLineHandlers creates the shared line command dependencies
func NewLineHandlers(
	tx *database.TxManager,
	orders domain.PurchaseOrderRepository,
	lines domain.PurchaseOrderLineRepository,
	materials inventory.MaterialRepository,
	aggregator *Aggregator,
) *LineHandlers {
	return &LineHandlers{tx: tx, orders: orders, lines: lines, materials: materials, aggregator: aggregator}
}

// mutate runs fn and the total recomputation in one transaction with the
// order locked first, then announces the new total
func (h *LineHandlers) mutate(ctx context.Context, orderID uint, fn func(ctx context.Context, order *domain.PurchaseOrder) error) error {
	var update *totalUpdate
	err := h.tx.Transaction(ctx, func(ctx context.Context) error {
		order, err := lockEditable(ctx, h.orders, orderID)
		if err != nil {
			return err
		}
		if err := fn(ctx, order); err != nil {
			return err
		}
		update, err = h.aggregator.recompute(ctx, order)
		return err
	})
	if err != nil {
		return err
	}
	h.aggregator.announce(ctx, update)
	return nil
}

// AddLineCommand adds a line to a purchase order
type AddLineCommand struct {
	PurchaseOrderID uint
	MaterialID      uint
	Quantity        int64
	UnitPrice       decimal.Decimal
}

// AddLineHandler handles add line command
type AddLineHandler struct {
	*LineHandlers
}

// NewAddLineHandler creates a new add line handler
func NewAddLineHandler(deps *LineHandlers) *AddLineHandler {
	return &AddLineHandler{LineHandlers: deps}
}

// Handle adds the line and returns it. The order total is current when
// Handle returns.
func (h *AddLineHandler) Handle(ctx context.Context, cmd AddLineCommand) (*domain.PurchaseOrderLine, error) {
	if err := validateLine(cmd.Quantity, cmd.UnitPrice); err != nil {
		return nil, err
	}

	line := &domain.PurchaseOrderLine{
		PurchaseOrderID: cmd.PurchaseOrderID,
		MaterialID:      cmd.MaterialID,
		Quantity:        cmd.Quantity,
		UnitPrice:       cmd.UnitPrice,
		Status:          domain.LineStatusPending,
	}
	err := h.mutate(ctx, cmd.PurchaseOrderID, func(ctx context.Context, _ *domain.PurchaseOrder) error {
		if err := checkMaterial(ctx, h.materials, cmd.MaterialID); err != nil {
			return err
		}
		return h.lines.Create(ctx, line)
	})
	if err != nil {
		return nil, apperror.Storage("failed to add purchase order line", err)
	}
	return line, nil
}

// UpdateLineCommand changes a purchase order line
type UpdateLineCommand struct {
	PurchaseOrderID uint
	LineID          uint
	MaterialID      *uint
	Quantity        *int64
	UnitPrice       *decimal.Decimal
}

// UpdateLineHandler handles update line command
type UpdateLineHandler struct {
	*LineHandlers
}

// NewUpdateLineHandler creates a new update line handler
func NewUpdateLineHandler(deps *LineHandlers) *UpdateLineHandler {
	return &UpdateLineHandler{LineHandlers: deps}
}

// Handle updates the line and recomputes the order total
func (h *UpdateLineHandler) Handle(ctx context.Context, cmd UpdateLineCommand) (*domain.PurchaseOrderLine, error) {
	var line *domain.PurchaseOrderLine
	err := h.mutate(ctx, cmd.PurchaseOrderID, func(ctx context.Context, _ *domain.PurchaseOrder) error {
		var err error
		line, err = lineOf(ctx, h.lines, cmd.PurchaseOrderID, cmd.LineID)
		if err != nil {
			return err
		}

		if cmd.MaterialID != nil && *cmd.MaterialID != line.MaterialID {
			if err := checkMaterial(ctx, h.materials, *cmd.MaterialID); err != nil {
				return err
			}
			line.MaterialID = *cmd.MaterialID
			line.Material = nil
		}
		if cmd.Quantity != nil {
			line.Quantity = *cmd.Quantity
		}
		if cmd.UnitPrice != nil {
			line.UnitPrice = *cmd.UnitPrice
		}
		if err := validateLine(line.Quantity, line.UnitPrice); err != nil {
			return err
		}
		return h.lines.Update(ctx, line)
	})
	if err != nil {
		return nil, apperror.Storage("failed to update purchase order line", err)
	}
	return line, nil
}

// DeleteLineCommand removes a purchase order line
type DeleteLineCommand struct {
	PurchaseOrderID uint
	LineID          uint
}

// DeleteLineHandler handles delete line command
type DeleteLineHandler struct {
	*LineHandlers
}

// NewDeleteLineHandler creates a new delete line handler
func NewDeleteLineHandler(deps *LineHandlers) *DeleteLineHandler {
	return &DeleteLineHandler{LineHandlers: deps}
}

// Handle deletes the line and recomputes the order total
func (h *DeleteLineHandler) Handle(ctx context.Context, cmd DeleteLineCommand) error {
	err := h.mutate(ctx, cmd.PurchaseOrderID, func(ctx context.Context, _ *domain.PurchaseOrder) error {
		if _, err := lineOf(ctx, h.lines, cmd.PurchaseOrderID, cmd.LineID); err != nil {
			return err
		}
		return h.lines.Delete(ctx, cmd.LineID)
	})
	if err != nil {
		return apperror.Storage("failed to delete purchase order line", err)
	}
	return nil
}
