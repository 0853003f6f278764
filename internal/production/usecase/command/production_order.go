package command

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	invcommand "github.com/tair/manufacturing-erp/internal/inventory/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// NewOrderNumber returns a production order number such as MO-1A2B3C4D
func NewOrderNumber() string {
	return "MO-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateProductionOrderCommand schedules a product for manufacture
type CreateProductionOrderCommand struct {
	ProductID    uint
	WorkCenterID *uint
	Quantity     int64
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	Notes        string
}

// CreateProductionOrderHandler handles create production order command
type CreateProductionOrderHandler struct {
	products    domain.ProductRepository
	workCenters domain.WorkCenterRepository
	orders      domain.ProductionOrderRepository
	evictor     *UsageEvictor
}

// NewCreateProductionOrderHandler creates a new create production order handler
func NewCreateProductionOrderHandler(
	products domain.ProductRepository,
	workCenters domain.WorkCenterRepository,
	orders domain.ProductionOrderRepository,
	evictor *UsageEvictor,
) *CreateProductionOrderHandler {
	return &CreateProductionOrderHandler{products: products, workCenters: workCenters, orders: orders, evictor: evictor}
}

// Handle executes the create production order command. New orders start PENDING.
func (h *CreateProductionOrderHandler) Handle(ctx context.Context, cmd CreateProductionOrderCommand) (*domain.ProductionOrder, error) {
	if cmd.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be greater than zero")
	}
	if cmd.PlannedStart != nil && cmd.PlannedEnd != nil && cmd.PlannedEnd.Before(*cmd.PlannedStart) {
		return nil, apperror.Validation("planned_end must not be before planned_start")
	}

	product, err := h.products.FindByID(ctx, cmd.ProductID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Validation("product %d does not exist", cmd.ProductID)
		}
		return nil, apperror.Storage("failed to load product", err)
	}
	if product.Status != domain.ProductStatusActive {
		return nil, apperror.Conflict("product %s is inactive", product.SKU)
	}
	if err := checkWorkCenter(ctx, h.workCenters, cmd.WorkCenterID); err != nil {
		return nil, err
	}

	order := &domain.ProductionOrder{
		OrderNumber:  NewOrderNumber(),
		ProductID:    product.ID,
		WorkCenterID: cmd.WorkCenterID,
		Quantity:     cmd.Quantity,
		Status:       domain.OrderStatusPending,
		PlannedStart: cmd.PlannedStart,
		PlannedEnd:   cmd.PlannedEnd,
		Notes:        cmd.Notes,
	}
	if err := h.orders.Create(ctx, order); err != nil {
		return nil, apperror.Storage("failed to create production order", err)
	}

	h.evictor.Product(ctx, order.ProductID)

	logger.Info(ctx).
		Str("order_number", order.OrderNumber).
		Uint("product_id", order.ProductID).
		Int64("quantity", order.Quantity).
		Msg("Production order created")
	return order, nil
}

func checkWorkCenter(ctx context.Context, repo domain.WorkCenterRepository, id *uint) error {
	if id == nil {
		return nil
	}
	wc, err := repo.FindByID(ctx, *id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Validation("work center %d does not exist", *id)
		}
		return apperror.Storage("failed to load work center", err)
	}
	if wc.Status != domain.WorkCenterStatusActive {
		return apperror.Conflict("work center %s is inactive", wc.Code)
	}
	return nil
}

// ChangeOrderStatusCommand moves an order through its lifecycle
type ChangeOrderStatusCommand struct {
	ID     uint
	Status domain.ProductionOrderStatus
}

// ChangeOrderStatusHandler handles status transitions other than completion
type ChangeOrderStatusHandler struct {
	tx      *database.TxManager
	orders  domain.ProductionOrderRepository
	evictor *UsageEvictor
}

// NewChangeOrderStatusHandler creates a new change status handler
func NewChangeOrderStatusHandler(tx *database.TxManager, orders domain.ProductionOrderRepository, evictor *UsageEvictor) *ChangeOrderStatusHandler {
	return &ChangeOrderStatusHandler{tx: tx, orders: orders, evictor: evictor}
}

// Handle executes the status change. The order row stays locked from the
// transition check to the write, so a concurrent completion cannot interleave.
func (h *ChangeOrderStatusHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*domain.ProductionOrder, error) {
	if !cmd.Status.Valid() {
		return nil, apperror.Validation("unknown status %q", cmd.Status)
	}
	if cmd.Status == domain.OrderStatusCompleted {
		return nil, apperror.Validation("orders are completed through the complete action, which consumes materials")
	}

	var productID uint
	err := h.tx.Transaction(ctx, func(ctx context.Context) error {
		order, err := h.orders.LockByID(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(cmd.Status) {
			return apperror.Conflict("production order %s cannot move from %s to %s", order.OrderNumber, order.Status, cmd.Status)
		}

		now := time.Now().UTC()
		order.Status = cmd.Status
		if (cmd.Status == domain.OrderStatusInProgress || cmd.Status == domain.OrderStatusActive) && order.ActualStart == nil {
			order.ActualStart = &now
		}
		if cmd.Status == domain.OrderStatusCancelled {
			order.ActualEnd = &now
		}
		productID = order.ProductID
		return h.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, apperror.Storage("failed to update production order", err)
	}

	h.evictor.Product(ctx, productID)
	return loadOrder(ctx, h.orders, cmd.ID)
}

// loadOrder reads the committed order with its associations for the response
func loadOrder(ctx context.Context, orders domain.ProductionOrderRepository, id uint) (*domain.ProductionOrder, error) {
	order, err := orders.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage("failed to load production order", err)
	}
	return order, nil
}

// CompleteProductionOrderHandler finishes an order and draws its materials
// from stock in one transaction
type CompleteProductionOrderHandler struct {
	tx        *database.TxManager
	orders    domain.ProductionOrderRepository
	boms      domain.BOMRepository
	materials inventory.MaterialRepository
	events    invcommand.StockEventPublisher
	evictor   *UsageEvictor
}

// NewCompleteProductionOrderHandler creates a new completion handler. events may be nil.
func NewCompleteProductionOrderHandler(
	tx *database.TxManager,
	orders domain.ProductionOrderRepository,
	boms domain.BOMRepository,
	materials inventory.MaterialRepository,
	events invcommand.StockEventPublisher,
	evictor *UsageEvictor,
) *CompleteProductionOrderHandler {
	return &CompleteProductionOrderHandler{
		tx:        tx,
		orders:    orders,
		boms:      boms,
		materials: materials,
		events:    events,
		evictor:   evictor,
	}
}

// Handle completes the order. Each material is consumed at the order quantity
// times its BOM requirement, waste included, rounded up to whole stock units.
// Insufficient stock on any line rolls the whole completion back.
func (h *CompleteProductionOrderHandler) Handle(ctx context.Context, id uint) (*domain.ProductionOrder, error) {
	var (
		order    *domain.ProductionOrder
		consumed []*inventory.Material
	)

	err := h.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		// Lock before the status check; two completions must not both draw stock
		order, err = h.orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(domain.OrderStatusCompleted) {
			return apperror.Conflict("production order %s cannot be completed from %s", order.OrderNumber, order.Status)
		}

		entries, err := h.boms.FindByProduct(ctx, order.ProductID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			units := entry.Requirement(order.Quantity).Ceil().IntPart()
			if units == 0 {
				continue
			}
			material, err := h.materials.AdjustStock(ctx, entry.MaterialID, -units)
			if err != nil {
				return err
			}
			consumed = append(consumed, material)
		}

		now := time.Now().UTC()
		order.Status = domain.OrderStatusCompleted
		order.ActualEnd = &now
		if order.ActualStart == nil {
			order.ActualStart = &now
		}
		return h.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, apperror.Storage("failed to complete production order", err)
	}

	ids := make([]uint, 0, len(consumed))
	for _, material := range consumed {
		ids = append(ids, material.ID)
		if material.IsBelowMinimum() {
			invcommand.NotifyStockLow(ctx, h.events, material)
		}
	}
	h.evictor.Materials(ctx, ids...)

	logger.Info(ctx).
		Str("order_number", order.OrderNumber).
		Int("materials_consumed", len(consumed)).
		Msg("Production order completed")
	return loadOrder(ctx, h.orders, id)
}

// DeleteProductionOrderHandler deletes orders without operations or quality checks
type DeleteProductionOrderHandler struct {
	orders  domain.ProductionOrderRepository
	evictor *UsageEvictor
}

// NewDeleteProductionOrderHandler creates a new delete production order handler
func NewDeleteProductionOrderHandler(orders domain.ProductionOrderRepository, evictor *UsageEvictor) *DeleteProductionOrderHandler {
	return &DeleteProductionOrderHandler{orders: orders, evictor: evictor}
}

// Handle deletes the production order with the given id
func (h *DeleteProductionOrderHandler) Handle(ctx context.Context, id uint) error {
	order, err := h.orders.FindByID(ctx, id)
	if err != nil {
		return apperror.Storage("failed to load production order", err)
	}

	ops, err := h.orders.CountOperations(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check production order references", err)
	}
	if ops > 0 {
		return apperror.InUse("production order", id, ops, "operations")
	}

	checks, err := h.orders.CountQualityChecks(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check production order references", err)
	}
	if checks > 0 {
		return apperror.InUse("production order", id, checks, "quality checks")
	}

	if err := h.orders.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete production order", err)
	}

	h.evictor.Product(ctx, order.ProductID)
	return nil
}
