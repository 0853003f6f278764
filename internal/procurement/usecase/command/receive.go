package command

import (
	"context"
	"strings"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// ReceiveLineCommand books goods received against a purchase order line
type ReceiveLineCommand struct {
	PurchaseOrderID uint
	LineID          uint
	Quantity        int64
	ReceivedBy      string
}

// ReceiveLineHandler handles goods receipts
type ReceiveLineHandler struct {
	tx        *database.TxManager
	orders    domain.PurchaseOrderRepository
	lines     domain.PurchaseOrderLineRepository
	materials inventory.MaterialRepository
}

// NewReceiveLineHandler creates a new receive line handler
func NewReceiveLineHandler(
	tx *database.TxManager,
	orders domain.PurchaseOrderRepository,
	lines domain.PurchaseOrderLineRepository,
	materials inventory.MaterialRepository,
) *ReceiveLineHandler {
	return &ReceiveLineHandler{tx: tx, orders: orders, lines: lines, materials: materials}
}

// Handle adds the received quantity to the line and to material stock. The
// order becomes RECEIVED once every line is fully received.
func (h *ReceiveLineHandler) Handle(ctx context.Context, cmd ReceiveLineCommand) (*domain.PurchaseOrderLine, error) {
	if cmd.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be greater than zero")
	}

	var (
		line     *domain.PurchaseOrderLine
		complete bool
	)
	err := h.tx.Transaction(ctx, func(ctx context.Context) error {
		order, err := h.orders.LockByID(ctx, cmd.PurchaseOrderID)
		if err != nil {
			return err
		}
		if !order.Status.Receivable() {
			return apperror.Conflict("purchase order %s is %s, goods can only be received on approved orders", order.PONumber, order.Status)
		}

		line, err = lineOf(ctx, h.lines, order.ID, cmd.LineID)
		if err != nil {
			return err
		}
		if outstanding := line.Outstanding(); cmd.Quantity > outstanding {
			return apperror.Validation("received quantity %d exceeds outstanding %d", cmd.Quantity, outstanding)
		}

		line.ReceivedQuantity += cmd.Quantity
		line.Status = domain.LineStatusPartial
		if line.Outstanding() == 0 {
			line.Status = domain.LineStatusReceived
		}
		if err := h.lines.Update(ctx, line); err != nil {
			return err
		}
		if _, err := h.materials.AdjustStock(ctx, line.MaterialID, cmd.Quantity); err != nil {
			return err
		}

		lines, err := h.lines.FindByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		complete = true
		for _, l := range lines {
			if l.Status != domain.LineStatusCancelled && l.Outstanding() > 0 {
				complete = false
				break
			}
		}
		if complete {
			return h.orders.UpdateStatus(ctx, order.ID, domain.POStatusReceived)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Storage("failed to receive goods", err)
	}

	receivedBy := strings.TrimSpace(cmd.ReceivedBy)
	if receivedBy == "" {
		receivedBy = "unknown"
	}
	logger.Info(ctx).
		Uint("purchase_order_id", cmd.PurchaseOrderID).
		Uint("line_id", line.ID).
		Int64("quantity", cmd.Quantity).
		Str("received_by", receivedBy).
		Bool("order_received", complete).
		Msg("Goods received")
	return line, nil
}
