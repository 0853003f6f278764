package http

import (
	"net/http"

	"github.com/tair/manufacturing-erp/internal/procurement/usecase/command"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

type createSupplierRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// CreateSupplier godoc
// @Summary Create supplier
// @Tags Suppliers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createSupplierRequest true "Supplier"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/suppliers [post]
func (h *PurchasingHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	supplier, err := h.createSupplierHandler.Handle(r.Context(), command.CreateSupplierCommand{
		Code:         req.Code,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Supplier created successfully",
		Data:    supplier,
	})
}

// GetSupplier godoc
// @Summary Get supplier
// @Tags Suppliers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/suppliers/{id} [get]
func (h *PurchasingHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	supplier, err := h.getSupplierHandler.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: supplier})
}

// ListSuppliers godoc
// @Summary List suppliers
// @Tags Suppliers
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.Response
// @Router /api/suppliers [get]
func (h *PurchasingHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r)
	suppliers, err := h.listSupplierHandler.Handle(r.Context(), limit, offset)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: suppliers})
}

type updateSupplierRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contact_email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
}

// UpdateSupplier godoc
// @Summary Update supplier
// @Tags Suppliers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param request body updateSupplierRequest true "Fields to change"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/suppliers/{id} [put]
func (h *PurchasingHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req updateSupplierRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	supplier, err := h.updateSupplierHandler.Handle(r.Context(), command.UpdateSupplierCommand{
		ID:           id,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Supplier updated successfully",
		Data:    supplier,
	})
}

// DeleteSupplier godoc
// @Summary Delete supplier
// @Description Rejected with 409 while purchase orders reference the supplier
// @Tags Suppliers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/suppliers/{id} [delete]
func (h *PurchasingHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.deleteSupplierHandler.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Supplier deleted successfully"})
}
