package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

type createProductRequest struct {
	SKU         string               `json:"sku"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProductStatus `json:"status"`
}

// CreateProduct godoc
// @Summary Create product
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createProductRequest true "Product data"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/products [post]
func (h *ProductionHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	product, err := h.commands.CreateProduct.Handle(r.Context(), command.CreateProductCommand{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// GetProduct godoc
// @Summary Get product with its bill of materials
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/products/{id} [get]
func (h *ProductionHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	product, err := h.queries.GetProduct.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: product})
}

// ListProducts godoc
// @Summary List products
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param status query string false "ACTIVE or INACTIVE"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.Response
// @Router /api/products [get]
func (h *ProductionHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r)
	products, err := h.queries.ListProducts.Handle(r.Context(), query.ListProductsQuery{
		Status: domain.ProductStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: products})
}

type updateProductRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Status      *domain.ProductStatus `json:"status"`
}

// UpdateProduct godoc
// @Summary Update product
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body updateProductRequest true "Fields to change"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/products/{id} [put]
func (h *ProductionHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req updateProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	product, err := h.commands.UpdateProduct.Handle(r.Context(), command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// DeleteProduct godoc
// @Summary Delete product
// @Description Rejected with 409 while BOM entries or production orders reference the product
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/products/{id} [delete]
func (h *ProductionHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.commands.DeleteProduct.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Product deleted successfully"})
}

type bomEntryRequest struct {
	MaterialID      uint            `json:"material_id"`
	QuantityNeeded  decimal.Decimal `json:"quantity_needed"`
	WastePercentage decimal.Decimal `json:"waste_percentage"`
	Notes           string          `json:"notes"`
}

// CreateBOMEntry godoc
// @Summary Add a material to a product's bill of materials
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body bomEntryRequest true "BOM entry"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/products/{id}/bom [post]
func (h *ProductionHandler) CreateBOMEntry(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req bomEntryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	entry, err := h.commands.CreateBOMEntry.Handle(r.Context(), command.CreateBOMEntryCommand{
		ProductID:       productID,
		MaterialID:      req.MaterialID,
		QuantityNeeded:  req.QuantityNeeded,
		WastePercentage: req.WastePercentage,
		Notes:           req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "BOM entry created successfully",
		Data:    entry,
	})
}

type updateBOMEntryRequest struct {
	QuantityNeeded  *decimal.Decimal `json:"quantity_needed"`
	WastePercentage *decimal.Decimal `json:"waste_percentage"`
	Notes           *string          `json:"notes"`
}

// UpdateBOMEntry godoc
// @Summary Update a BOM entry
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "BOM entry ID"
// @Param request body updateBOMEntryRequest true "Fields to change"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/bom-entries/{id} [put]
func (h *ProductionHandler) UpdateBOMEntry(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req updateBOMEntryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	entry, err := h.commands.UpdateBOMEntry.Handle(r.Context(), command.UpdateBOMEntryCommand{
		ID:              id,
		QuantityNeeded:  req.QuantityNeeded,
		WastePercentage: req.WastePercentage,
		Notes:           req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "BOM entry updated successfully",
		Data:    entry,
	})
}

// DeleteBOMEntry godoc
// @Summary Remove a BOM entry
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "BOM entry ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/bom-entries/{id} [delete]
func (h *ProductionHandler) DeleteBOMEntry(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.commands.DeleteBOMEntry.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "BOM entry deleted successfully"})
}
