package command

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// CreateWorkCenterCommand registers a machine or line
type CreateWorkCenterCommand struct {
	Code            string
	Name            string
	Description     string
	CapacityPerHour decimal.Decimal
}

// CreateWorkCenterHandler handles create work center command
type CreateWorkCenterHandler struct {
	repo domain.WorkCenterRepository
}

// NewCreateWorkCenterHandler creates a new create work center handler
func NewCreateWorkCenterHandler(repo domain.WorkCenterRepository) *CreateWorkCenterHandler {
	return &CreateWorkCenterHandler{repo: repo}
}

// Handle executes the create work center command
func (h *CreateWorkCenterHandler) Handle(ctx context.Context, cmd CreateWorkCenterCommand) (*domain.WorkCenter, error) {
	code := strings.TrimSpace(cmd.Code)
	name := strings.TrimSpace(cmd.Name)
	if code == "" || name == "" {
		return nil, apperror.Validation("code and name are required")
	}
	if cmd.CapacityPerHour.IsNegative() {
		return nil, apperror.Validation("capacity_per_hour cannot be negative")
	}

	wc := &domain.WorkCenter{
		Code:            code,
		Name:            name,
		Description:     cmd.Description,
		CapacityPerHour: cmd.CapacityPerHour,
		Status:          domain.WorkCenterStatusActive,
	}
	if err := h.repo.Create(ctx, wc); err != nil {
		return nil, apperror.Storage("failed to create work center", err)
	}
	return wc, nil
}

// DeleteWorkCenterHandler deletes unreferenced work centers
type DeleteWorkCenterHandler struct {
	repo domain.WorkCenterRepository
}

// NewDeleteWorkCenterHandler creates a new delete work center handler
func NewDeleteWorkCenterHandler(repo domain.WorkCenterRepository) *DeleteWorkCenterHandler {
	return &DeleteWorkCenterHandler{repo: repo}
}

// Handle deletes the work center with the given id
func (h *DeleteWorkCenterHandler) Handle(ctx context.Context, id uint) error {
	if _, err := h.repo.FindByID(ctx, id); err != nil {
		return apperror.Storage("failed to load work center", err)
	}

	orders, err := h.repo.CountProductionOrders(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check work center references", err)
	}
	if orders > 0 {
		return apperror.InUse("work center", id, orders, "production orders")
	}

	ops, err := h.repo.CountOperations(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check work center references", err)
	}
	if ops > 0 {
		return apperror.InUse("work center", id, ops, "operations")
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete work center", err)
	}
	return nil
}
