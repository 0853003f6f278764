package command

import (
	"context"
	"strings"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// CreateProductCommand represents the command to create a product
type CreateProductCommand struct {
	SKU         string
	Name        string
	Description string
	Status      domain.ProductStatus
}

// CreateProductHandler handles create product command
type CreateProductHandler struct {
	repo domain.ProductRepository
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository) *CreateProductHandler {
	return &CreateProductHandler{repo: repo}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	cmd.SKU = strings.TrimSpace(cmd.SKU)
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.SKU == "" || cmd.Name == "" {
		return nil, apperror.Validation("sku and name are required")
	}
	if cmd.Status == "" {
		cmd.Status = domain.ProductStatusActive
	}
	if cmd.Status != domain.ProductStatusActive && cmd.Status != domain.ProductStatusInactive {
		return nil, apperror.Validation("unknown status %q", cmd.Status)
	}

	product := &domain.Product{
		SKU:         cmd.SKU,
		Name:        cmd.Name,
		Description: cmd.Description,
		Status:      cmd.Status,
	}
	if err := h.repo.Create(ctx, product); err != nil {
		return nil, apperror.Storage("failed to create product", err)
	}
	return product, nil
}

// UpdateProductCommand represents the command to update a product.
// Nil fields are left unchanged.
type UpdateProductCommand struct {
	ID          uint
	Name        *string
	Description *string
	Status      *domain.ProductStatus
}

// UpdateProductHandler handles update product command
type UpdateProductHandler struct {
	repo domain.ProductRepository
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load product", err)
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		product.Name = name
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Status != nil {
		if *cmd.Status != domain.ProductStatusActive && *cmd.Status != domain.ProductStatusInactive {
			return nil, apperror.Validation("unknown status %q", *cmd.Status)
		}
		product.Status = *cmd.Status
	}

	if err := h.repo.Update(ctx, product); err != nil {
		return nil, apperror.Storage("failed to update product", err)
	}
	return product, nil
}

// DeleteProductHandler deletes products without BOM entries or orders
type DeleteProductHandler struct {
	repo domain.ProductRepository
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(repo domain.ProductRepository) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo}
}

// Handle deletes the product with the given id
func (h *DeleteProductHandler) Handle(ctx context.Context, id uint) error {
	if _, err := h.repo.FindByID(ctx, id); err != nil {
		return apperror.Storage("failed to load product", err)
	}

	entries, err := h.repo.CountBOMEntries(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check product references", err)
	}
	if entries > 0 {
		return apperror.InUse("product", id, entries, "BOM entries")
	}

	orders, err := h.repo.CountProductionOrders(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check product references", err)
	}
	if orders > 0 {
		return apperror.InUse("product", id, orders, "production orders")
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete product", err)
	}
	return nil
}
