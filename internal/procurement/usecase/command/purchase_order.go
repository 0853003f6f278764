package command

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// NewPONumber returns a purchase order number such as PO-1A2B3C4D
func NewPONumber() string {
	return "PO-" + strings.ToUpper(uuid.NewString()[:8])
}

// LineInput is a line submitted with a new purchase order
type LineInput struct {
	MaterialID uint
	Quantity   int64
	UnitPrice  decimal.Decimal
}

// CreatePurchaseOrderCommand opens a purchase order with a supplier
type CreatePurchaseOrderCommand struct {
	SupplierID   uint
	ExpectedDate *time.Time
	Notes        string
	Lines        []LineInput
}

// CreatePurchaseOrderHandler handles create purchase order command
type CreatePurchaseOrderHandler struct {
	*LineHandlers
	suppliers domain.SupplierRepository
}

// NewCreatePurchaseOrderHandler creates a new create purchase order handler
func NewCreatePurchaseOrderHandler(deps *LineHandlers, suppliers domain.SupplierRepository) *CreatePurchaseOrderHandler {
	return &CreatePurchaseOrderHandler{LineHandlers: deps, suppliers: suppliers}
}

// Handle creates a DRAFT order with its initial lines and total in one transaction
func (h *CreatePurchaseOrderHandler) Handle(ctx context.Context, cmd CreatePurchaseOrderCommand) (*domain.PurchaseOrder, error) {
	for _, in := range cmd.Lines {
		if err := validateLine(in.Quantity, in.UnitPrice); err != nil {
			return nil, err
		}
	}

	if _, err := h.suppliers.FindByID(ctx, cmd.SupplierID); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Validation("supplier %d does not exist", cmd.SupplierID)
		}
		return nil, apperror.Storage("failed to load supplier", err)
	}

	order := &domain.PurchaseOrder{
		PONumber:     NewPONumber(),
		SupplierID:   cmd.SupplierID,
		Status:       domain.POStatusDraft,
		OrderDate:    time.Now().UTC(),
		ExpectedDate: cmd.ExpectedDate,
		TotalAmount:  decimal.Zero,
		Notes:        cmd.Notes,
	}

	var update *totalUpdate
	err := h.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := h.orders.Create(ctx, order); err != nil {
			return err
		}
		for _, in := range cmd.Lines {
			if err := checkMaterial(ctx, h.materials, in.MaterialID); err != nil {
				return err
			}
			line := &domain.PurchaseOrderLine{
				PurchaseOrderID: order.ID,
				MaterialID:      in.MaterialID,
				Quantity:        in.Quantity,
				UnitPrice:       in.UnitPrice,
				Status:          domain.LineStatusPending,
			}
			if err := h.lines.Create(ctx, line); err != nil {
				return err
			}
			order.Lines = append(order.Lines, *line)
		}
		var err error
		update, err = h.aggregator.recompute(ctx, order)
		return err
	})
	if err != nil {
		return nil, apperror.Storage("failed to create purchase order", err)
	}

	h.aggregator.announce(ctx, update)
	return order, nil
}

// ChangePOStatusCommand moves a purchase order through its lifecycle
type ChangePOStatusCommand struct {
	ID     uint
	Status domain.PurchaseOrderStatus
}

// ChangePOStatusHandler handles purchase order status changes
type ChangePOStatusHandler struct {
	*LineHandlers
}

// NewChangePOStatusHandler creates a new change status handler
func NewChangePOStatusHandler(deps *LineHandlers) *ChangePOStatusHandler {
	return &ChangePOStatusHandler{LineHandlers: deps}
}

// Handle applies the transition. RECEIVED is only accepted once every line
// has been received.
func (h *ChangePOStatusHandler) Handle(ctx context.Context, cmd ChangePOStatusCommand) (*domain.PurchaseOrder, error) {
	if !cmd.Status.Valid() {
		return nil, apperror.Validation("unknown status %q", cmd.Status)
	}

	err := h.tx.Transaction(ctx, func(ctx context.Context) error {
		order, err := h.orders.LockByID(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(cmd.Status) {
			return apperror.Conflict("purchase order %s cannot move from %s to %s", order.PONumber, order.Status, cmd.Status)
		}
		if cmd.Status == domain.POStatusReceived {
			lines, err := h.lines.FindByOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			for _, line := range lines {
				if line.Status != domain.LineStatusCancelled && line.Outstanding() > 0 {
					return apperror.Conflict("purchase order %s still has outstanding lines", order.PONumber)
				}
			}
		}
		return h.orders.UpdateStatus(ctx, order.ID, cmd.Status)
	})
	if err != nil {
		return nil, apperror.Storage("failed to change purchase order status", err)
	}

	order, err := h.orders.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load purchase order", err)
	}
	logger.Info(ctx).Str("po_number", order.PONumber).Str("status", string(order.Status)).Msg("Purchase order status changed")
	return order, nil
}

// DeletePurchaseOrderHandler deletes purchase orders without lines
type DeletePurchaseOrderHandler struct {
	orders domain.PurchaseOrderRepository
}

// NewDeletePurchaseOrderHandler creates a new delete purchase order handler
func NewDeletePurchaseOrderHandler(orders domain.PurchaseOrderRepository) *DeletePurchaseOrderHandler {
	return &DeletePurchaseOrderHandler{orders: orders}
}

// Handle deletes the purchase order with the given id
func (h *DeletePurchaseOrderHandler) Handle(ctx context.Context, id uint) error {
	if _, err := h.orders.FindByID(ctx, id); err != nil {
		return apperror.Storage("failed to load purchase order", err)
	}

	lines, err := h.orders.CountLines(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check purchase order references", err)
	}
	if lines > 0 {
		return apperror.InUse("purchase order", id, lines, "lines")
	}

	if err := h.orders.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete purchase order", err)
	}
	return nil
}
