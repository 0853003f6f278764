package http

import (
	"net/http"

	"github.com/tair/manufacturing-erp/internal/inventory/usecase/command"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

type createMaterialTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateMaterialType godoc
// @Summary Create material type
// @Tags Catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createMaterialTypeRequest true "Material type"
// @Success 201 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/material-types [post]
func (h *MaterialHandler) CreateMaterialType(w http.ResponseWriter, r *http.Request) {
	var req createMaterialTypeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	materialType, err := h.createTypeHandler.Handle(r.Context(), command.CreateMaterialTypeCommand{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{Success: true, Data: materialType})
}

// ListMaterialTypes godoc
// @Summary List material types
// @Tags Catalog
// @Security BearerAuth
// @Produce json
// @Success 200 {object} httpx.Response
// @Router /api/material-types [get]
func (h *MaterialHandler) ListMaterialTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.listTypesHandler.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: types})
}

// DeleteMaterialType godoc
// @Summary Delete material type
// @Description Rejected with 409 while materials use the type
// @Tags Catalog
// @Security BearerAuth
// @Produce json
// @Param id path int true "Material type ID"
// @Success 200 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/material-types/{id} [delete]
func (h *MaterialHandler) DeleteMaterialType(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.deleteTypeHandler.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Material type deleted successfully"})
}

type createUnitRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CreateUnit godoc
// @Summary Create unit of measure
// @Tags Catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createUnitRequest true "Unit"
// @Success 201 {object} httpx.Response
// @Router /api/units [post]
func (h *MaterialHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req createUnitRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	unit, err := h.createUnitHandler.Handle(r.Context(), command.CreateUnitCommand{Name: req.Name, Symbol: req.Symbol})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{Success: true, Data: unit})
}

// ListUnits godoc
// @Summary List units of measure
// @Tags Catalog
// @Security BearerAuth
// @Produce json
// @Success 200 {object} httpx.Response
// @Router /api/units [get]
func (h *MaterialHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.listUnitsHandler.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: units})
}

// DeleteUnit godoc
// @Summary Delete unit of measure
// @Description Rejected with 409 while materials use the unit
// @Tags Catalog
// @Security BearerAuth
// @Produce json
// @Param id path int true "Unit ID"
// @Success 200 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/units/{id} [delete]
func (h *MaterialHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.deleteUnitHandler.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Unit deleted successfully"})
}
