package command

import (
	"context"
	"strings"
	"time"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

func terminal(status domain.ProductionOrderStatus) bool {
	return status == domain.OrderStatusCompleted || status == domain.OrderStatusCancelled
}

// AddOperationCommand appends a routing step to a production order
type AddOperationCommand struct {
	ProductionOrderID uint
	WorkCenterID      *uint
	Sequence          int
	Name              string
	PlannedMinutes    int
}

// AddOperationHandler handles add operation command
type AddOperationHandler struct {
	orders      domain.ProductionOrderRepository
	workCenters domain.WorkCenterRepository
}

// NewAddOperationHandler creates a new add operation handler
func NewAddOperationHandler(orders domain.ProductionOrderRepository, workCenters domain.WorkCenterRepository) *AddOperationHandler {
	return &AddOperationHandler{orders: orders, workCenters: workCenters}
}

// Handle executes the add operation command. A zero sequence places the
// operation after the existing ones.
func (h *AddOperationHandler) Handle(ctx context.Context, cmd AddOperationCommand) (*domain.ProductionOperation, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if cmd.Sequence < 0 || cmd.PlannedMinutes < 0 {
		return nil, apperror.Validation("sequence and planned_minutes cannot be negative")
	}

	order, err := h.orders.FindByID(ctx, cmd.ProductionOrderID)
	if err != nil {
		return nil, apperror.Storage("failed to load production order", err)
	}
	if terminal(order.Status) {
		return nil, apperror.Conflict("production order %s is %s", order.OrderNumber, order.Status)
	}
	if err := checkWorkCenter(ctx, h.workCenters, cmd.WorkCenterID); err != nil {
		return nil, err
	}

	sequence := cmd.Sequence
	if sequence == 0 {
		sequence = len(order.Operations) + 1
	}

	op := &domain.ProductionOperation{
		ProductionOrderID: order.ID,
		WorkCenterID:      cmd.WorkCenterID,
		Sequence:          sequence,
		Name:              name,
		Status:            domain.OperationStatusPending,
		PlannedMinutes:    cmd.PlannedMinutes,
	}
	if err := h.orders.AddOperation(ctx, op); err != nil {
		return nil, apperror.Storage("failed to add operation", err)
	}
	return op, nil
}

// RecordQualityCheckCommand records an inspection result
type RecordQualityCheckCommand struct {
	ProductionOrderID uint
	Inspector         string
	Result            domain.QualityResult
	SampleSize        int
	DefectCount       int
	Notes             string
}

// RecordQualityCheckHandler handles record quality check command
type RecordQualityCheckHandler struct {
	orders domain.ProductionOrderRepository
}

// NewRecordQualityCheckHandler creates a new record quality check handler
func NewRecordQualityCheckHandler(orders domain.ProductionOrderRepository) *RecordQualityCheckHandler {
	return &RecordQualityCheckHandler{orders: orders}
}

// Handle executes the record quality check command
func (h *RecordQualityCheckHandler) Handle(ctx context.Context, cmd RecordQualityCheckCommand) (*domain.QualityCheck, error) {
	switch cmd.Result {
	case domain.QualityResultPending, domain.QualityResultPass, domain.QualityResultFail:
	default:
		return nil, apperror.Validation("unknown result %q", cmd.Result)
	}
	if strings.TrimSpace(cmd.Inspector) == "" {
		return nil, apperror.Validation("inspector is required")
	}
	if cmd.SampleSize < 0 || cmd.DefectCount < 0 {
		return nil, apperror.Validation("sample_size and defect_count cannot be negative")
	}
	if cmd.DefectCount > cmd.SampleSize {
		return nil, apperror.Validation("defect_count cannot exceed sample_size")
	}

	order, err := h.orders.FindByID(ctx, cmd.ProductionOrderID)
	if err != nil {
		return nil, apperror.Storage("failed to load production order", err)
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, apperror.Conflict("production order %s is cancelled", order.OrderNumber)
	}

	check := &domain.QualityCheck{
		ProductionOrderID: order.ID,
		Inspector:         cmd.Inspector,
		Result:            cmd.Result,
		SampleSize:        cmd.SampleSize,
		DefectCount:       cmd.DefectCount,
		Notes:             cmd.Notes,
		CheckedAt:         time.Now().UTC(),
	}
	if err := h.orders.AddQualityCheck(ctx, check); err != nil {
		return nil, apperror.Storage("failed to record quality check", err)
	}

	if check.Result == domain.QualityResultFail {
		logger.Warn(ctx).
			Str("order_number", order.OrderNumber).
			Int("defects", check.DefectCount).
			Str("inspector", check.Inspector).
			Msg("Quality check failed")
	}
	return check, nil
}
