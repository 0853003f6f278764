package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/inventory/usecase/command"
	"github.com/tair/manufacturing-erp/internal/inventory/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/auth"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

// MaterialHandler handles HTTP requests for materials, material types and units
type MaterialHandler struct {
	// Command handlers
	createHandler     *command.CreateMaterialHandler
	updateHandler     *command.UpdateMaterialHandler
	deleteHandler     *command.DeleteMaterialHandler
	adjustHandler     *command.AdjustStockHandler
	createTypeHandler *command.CreateMaterialTypeHandler
	deleteTypeHandler *command.DeleteMaterialTypeHandler
	createUnitHandler *command.CreateUnitHandler
	deleteUnitHandler *command.DeleteUnitHandler

	// Query handlers
	getHandler       *query.GetMaterialHandler
	listHandler      *query.ListMaterialsHandler
	lowStockHandler  *query.ListLowStockHandler
	listTypesHandler *query.ListMaterialTypesHandler
	listUnitsHandler *query.ListUnitsHandler

	auth    *httpx.Authenticator
	metrics *httpx.Metrics
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(
	createHandler *command.CreateMaterialHandler,
	updateHandler *command.UpdateMaterialHandler,
	deleteHandler *command.DeleteMaterialHandler,
	adjustHandler *command.AdjustStockHandler,
	createTypeHandler *command.CreateMaterialTypeHandler,
	deleteTypeHandler *command.DeleteMaterialTypeHandler,
	createUnitHandler *command.CreateUnitHandler,
	deleteUnitHandler *command.DeleteUnitHandler,
	getHandler *query.GetMaterialHandler,
	listHandler *query.ListMaterialsHandler,
	lowStockHandler *query.ListLowStockHandler,
	listTypesHandler *query.ListMaterialTypesHandler,
	listUnitsHandler *query.ListUnitsHandler,
	authenticator *httpx.Authenticator,
	metrics *httpx.Metrics,
) *MaterialHandler {
	return &MaterialHandler{
		createHandler:     createHandler,
		updateHandler:     updateHandler,
		deleteHandler:     deleteHandler,
		adjustHandler:     adjustHandler,
		createTypeHandler: createTypeHandler,
		deleteTypeHandler: deleteTypeHandler,
		createUnitHandler: createUnitHandler,
		deleteUnitHandler: deleteUnitHandler,
		getHandler:        getHandler,
		listHandler:       listHandler,
		lowStockHandler:   lowStockHandler,
		listTypesHandler:  listTypesHandler,
		listUnitsHandler:  listUnitsHandler,
		auth:              authenticator,
		metrics:           metrics,
	}
}

// RegisterRoutes registers all inventory routes
func (h *MaterialHandler) RegisterRoutes(router *mux.Router) {
	read := h.auth.Require()
	write := h.auth.Require(auth.RolePlanner, auth.RolePurchaser)
	stock := h.auth.Require(auth.RolePlanner)

	router.HandleFunc("/api/materials", h.metrics.Instrument("/api/materials", read(h.ListMaterials))).Methods("GET")
	router.HandleFunc("/api/materials", h.metrics.Instrument("/api/materials", write(h.CreateMaterial))).Methods("POST")
	router.HandleFunc("/api/materials/low-stock", h.metrics.Instrument("/api/materials/low-stock", read(h.ListLowStock))).Methods("GET")
	router.HandleFunc("/api/materials/{id:[0-9]+}", h.metrics.Instrument("/api/materials/{id}", read(h.GetMaterial))).Methods("GET")
	router.HandleFunc("/api/materials/{id:[0-9]+}", h.metrics.Instrument("/api/materials/{id}", write(h.UpdateMaterial))).Methods("PUT")
	router.HandleFunc("/api/materials/{id:[0-9]+}", h.metrics.Instrument("/api/materials/{id}", write(h.DeleteMaterial))).Methods("DELETE")
	router.HandleFunc("/api/materials/{id:[0-9]+}/stock", h.metrics.Instrument("/api/materials/{id}/stock", stock(h.AdjustStock))).Methods("POST")

	router.HandleFunc("/api/material-types", h.metrics.Instrument("/api/material-types", read(h.ListMaterialTypes))).Methods("GET")
	router.HandleFunc("/api/material-types", h.metrics.Instrument("/api/material-types", write(h.CreateMaterialType))).Methods("POST")
	router.HandleFunc("/api/material-types/{id:[0-9]+}", h.metrics.Instrument("/api/material-types/{id}", write(h.DeleteMaterialType))).Methods("DELETE")

	router.HandleFunc("/api/units", h.metrics.Instrument("/api/units", read(h.ListUnits))).Methods("GET")
	router.HandleFunc("/api/units", h.metrics.Instrument("/api/units", write(h.CreateUnit))).Methods("POST")
	router.HandleFunc("/api/units/{id:[0-9]+}", h.metrics.Instrument("/api/units/{id}", write(h.DeleteUnit))).Methods("DELETE")
}

type createMaterialRequest struct {
	SKU               string                `json:"sku"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	MaterialTypeID    uint                  `json:"material_type_id"`
	UnitOfMeasureID   uint                  `json:"unit_of_measure_id"`
	CostPerUnit       decimal.Decimal       `json:"cost_per_unit"`
	CurrentStock      int64                 `json:"current_stock"`
	MinimumStockLevel int64                 `json:"minimum_stock_level"`
	Status            domain.MaterialStatus `json:"status"`
}

// CreateMaterial godoc
// @Summary Create material
// @Description Create a stocked material
// @Tags Materials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createMaterialRequest true "Material data"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/materials [post]
func (h *MaterialHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req createMaterialRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	material, err := h.createHandler.Handle(r.Context(), command.CreateMaterialCommand{
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		MaterialTypeID:    req.MaterialTypeID,
		UnitOfMeasureID:   req.UnitOfMeasureID,
		CostPerUnit:       req.CostPerUnit,
		CurrentStock:      req.CurrentStock,
		MinimumStockLevel: req.MinimumStockLevel,
		Status:            req.Status,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Material created successfully",
		Data:    material,
	})
}

// GetMaterial godoc
// @Summary Get material
// @Tags Materials
// @Security BearerAuth
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/materials/{id} [get]
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	material, err := h.getHandler.Handle(r.Context(), query.GetMaterialQuery{ID: id})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: material})
}

// ListMaterials godoc
// @Summary List materials
// @Tags Materials
// @Security BearerAuth
// @Produce json
// @Param status query string false "ACTIVE or INACTIVE"
// @Param material_type_id query int false "Material type"
// @Param q query string false "Name or SKU contains"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.Response
// @Router /api/materials [get]
func (h *MaterialHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r)
	q := query.ListMaterialsQuery{
		Status: domain.MaterialStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("material_type_id"); raw != "" {
		typeID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httpx.RespondError(w, r, apperror.Validation("invalid material_type_id"))
			return
		}
		q.MaterialTypeID = uint(typeID)
	}

	materials, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: materials})
}

// ListLowStock godoc
// @Summary List materials below their minimum stock level
// @Tags Materials
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.Response
// @Router /api/materials/low-stock [get]
func (h *MaterialHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r)
	materials, err := h.lowStockHandler.Handle(r.Context(), query.ListLowStockQuery{Limit: limit, Offset: offset})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: materials})
}

type updateMaterialRequest struct {
	SKU               *string                `json:"sku"`
	Name              *string                `json:"name"`
	Description       *string                `json:"description"`
	MaterialTypeID    *uint                  `json:"material_type_id"`
	UnitOfMeasureID   *uint                  `json:"unit_of_measure_id"`
	CostPerUnit       *decimal.Decimal       `json:"cost_per_unit"`
	MinimumStockLevel *int64                 `json:"minimum_stock_level"`
	Status            *domain.MaterialStatus `json:"status"`
}

// UpdateMaterial godoc
// @Summary Update material
// @Description Update material attributes. Stock is changed through the stock endpoint.
// @Tags Materials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Material ID"
// @Param request body updateMaterialRequest true "Fields to change"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/materials/{id} [put]
func (h *MaterialHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req updateMaterialRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	material, err := h.updateHandler.Handle(r.Context(), command.UpdateMaterialCommand{
		ID:                id,
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		MaterialTypeID:    req.MaterialTypeID,
		UnitOfMeasureID:   req.UnitOfMeasureID,
		CostPerUnit:       req.CostPerUnit,
		MinimumStockLevel: req.MinimumStockLevel,
		Status:            req.Status,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Material updated successfully",
		Data:    material,
	})
}

// DeleteMaterial godoc
// @Summary Delete material
// @Description Rejected with 409 while a BOM entry references the material
// @Tags Materials
// @Security BearerAuth
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/materials/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteMaterialCommand{ID: id}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Material deleted successfully"})
}

type adjustStockRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

// AdjustStock godoc
// @Summary Adjust material stock
// @Description Add (positive delta) or remove (negative delta) stock atomically
// @Tags Materials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Material ID"
// @Param request body adjustStockRequest true "Adjustment"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/materials/{id}/stock [post]
func (h *MaterialHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req adjustStockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	material, err := h.adjustHandler.Handle(r.Context(), command.AdjustStockCommand{
		MaterialID: id,
		Delta:      req.Delta,
		Reason:     req.Reason,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Stock adjusted successfully",
		Data:    material,
	})
}
