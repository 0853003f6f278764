package command

import (
	"context"
	"strings"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// CreateSupplierCommand registers a supplier
type CreateSupplierCommand struct {
	Code         string
	Name         string
	ContactEmail string
	Phone        string
	Address      string
}

// CreateSupplierHandler handles create supplier command
type CreateSupplierHandler struct {
	repo domain.SupplierRepository
}

// NewCreateSupplierHandler creates a new create supplier handler
func NewCreateSupplierHandler(repo domain.SupplierRepository) *CreateSupplierHandler {
	return &CreateSupplierHandler{repo: repo}
}

// Handle executes the create supplier command
func (h *CreateSupplierHandler) Handle(ctx context.Context, cmd CreateSupplierCommand) (*domain.Supplier, error) {
	code := strings.TrimSpace(cmd.Code)
	name := strings.TrimSpace(cmd.Name)
	if code == "" || name == "" {
		return nil, apperror.Validation("code and name are required")
	}
	if cmd.ContactEmail != "" && !strings.Contains(cmd.ContactEmail, "@") {
		return nil, apperror.Validation("contact_email is not an email address")
	}

	supplier := &domain.Supplier{
		Code:         code,
		Name:         name,
		ContactEmail: cmd.ContactEmail,
		Phone:        cmd.Phone,
		Address:      cmd.Address,
	}
	if err := h.repo.Create(ctx, supplier); err != nil {
		return nil, apperror.Storage("failed to create supplier", err)
	}
	return supplier, nil
}

// UpdateSupplierCommand changes supplier contact details
type UpdateSupplierCommand struct {
	ID           uint
	Name         *string
	ContactEmail *string
	Phone        *string
	Address      *string
}

// UpdateSupplierHandler handles update supplier command
type UpdateSupplierHandler struct {
	repo domain.SupplierRepository
}

// NewUpdateSupplierHandler creates a new update supplier handler
func NewUpdateSupplierHandler(repo domain.SupplierRepository) *UpdateSupplierHandler {
	return &UpdateSupplierHandler{repo: repo}
}

// Handle executes the update supplier command
func (h *UpdateSupplierHandler) Handle(ctx context.Context, cmd UpdateSupplierCommand) (*domain.Supplier, error) {
	supplier, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load supplier", err)
	}

	if cmd.Name != nil {
		if strings.TrimSpace(*cmd.Name) == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		supplier.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.ContactEmail != nil {
		if *cmd.ContactEmail != "" && !strings.Contains(*cmd.ContactEmail, "@") {
			return nil, apperror.Validation("contact_email is not an email address")
		}
		supplier.ContactEmail = *cmd.ContactEmail
	}
	if cmd.Phone != nil {
		supplier.Phone = *cmd.Phone
	}
	if cmd.Address != nil {
		supplier.Address = *cmd.Address
	}

	if err := h.repo.Update(ctx, supplier); err != nil {
		return nil, apperror.Storage("failed to update supplier", err)
	}
	return supplier, nil
}

// DeleteSupplierHandler deletes suppliers without purchase orders
type DeleteSupplierHandler struct {
	repo domain.SupplierRepository
}

// NewDeleteSupplierHandler creates a new delete supplier handler
func NewDeleteSupplierHandler(repo domain.SupplierRepository) *DeleteSupplierHandler {
	return &DeleteSupplierHandler{repo: repo}
}

// Handle deletes the supplier with the given id
func (h *DeleteSupplierHandler) Handle(ctx context.Context, id uint) error {
	if _, err := h.repo.FindByID(ctx, id); err != nil {
		return apperror.Storage("failed to load supplier", err)
	}

	orders, err := h.repo.CountPurchaseOrders(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check supplier references", err)
	}
	if orders > 0 {
		return apperror.InUse("supplier", id, orders, "purchase orders")
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete supplier", err)
	}
	return nil
}
