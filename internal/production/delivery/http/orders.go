package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

type createProductionOrderRequest struct {
	ProductID    uint       `json:"product_id"`
	WorkCenterID *uint      `json:"work_center_id"`
	Quantity     int64      `json:"quantity"`
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
	Notes        string     `json:"notes"`
}

// CreateProductionOrder godoc
// @Summary Create production order
// @Tags Production Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createProductionOrderRequest true "Order data"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/production-orders [post]
func (h *ProductionHandler) CreateProductionOrder(w http.ResponseWriter, r *http.Request) {
	var req createProductionOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	order, err := h.commands.CreateOrder.Handle(r.Context(), command.CreateProductionOrderCommand{
		ProductID:    req.ProductID,
		WorkCenterID: req.WorkCenterID,
		Quantity:     req.Quantity,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
		Notes:        req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Production order created successfully",
		Data:    order,
	})
}

// GetProductionOrder godoc
// @Summary Get production order
// @Tags Production Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Production order ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/production-orders/{id} [get]
func (h *ProductionHandler) GetProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	order, err := h.queries.GetOrder.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: order})
}

// ListProductionOrders godoc
// @Summary List production orders
// @Tags Production Orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Param product_id query int false "Product"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.Response
// @Router /api/production-orders [get]
func (h *ProductionHandler) ListProductionOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r)
	q := query.ListProductionOrdersQuery{
		Status: domain.ProductionOrderStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		productID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httpx.RespondError(w, r, apperror.Validation("invalid product_id"))
			return
		}
		q.ProductID = uint(productID)
	}

	orders, err := h.queries.ListOrders.Handle(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: orders})
}

type changeStatusRequest struct {
	Status domain.ProductionOrderStatus `json:"status"`
}

// ChangeOrderStatus godoc
// @Summary Move a production order to another status
// @Description COMPLETED is reached through the complete action
// @Tags Production Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Production order ID"
// @Param request body changeStatusRequest true "Target status"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/production-orders/{id}/status [post]
func (h *ProductionHandler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req changeStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	order, err := h.commands.ChangeOrderStatus.Handle(r.Context(), command.ChangeOrderStatusCommand{ID: id, Status: req.Status})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Production order status updated",
		Data:    order,
	})
}

// CompleteProductionOrder godoc
// @Summary Complete a production order
// @Description Consumes the BOM materials from stock. Fails with 409 when any material is short.
// @Tags Production Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Production order ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/production-orders/{id}/complete [post]
func (h *ProductionHandler) CompleteProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	order, err := h.commands.CompleteOrder.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Production order completed",
		Data:    order,
	})
}

// DeleteProductionOrder godoc
// @Summary Delete production order
// @Description Rejected with 409 while operations or quality checks exist
// @Tags Production Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Production order ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/production-orders/{id} [delete]
func (h *ProductionHandler) DeleteProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.commands.DeleteOrder.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Production order deleted successfully"})
}

type addOperationRequest struct {
	WorkCenterID   *uint  `json:"work_center_id"`
	Sequence       int    `json:"sequence"`
	Name           string `json:"name"`
	PlannedMinutes int    `json:"planned_minutes"`
}

// AddOperation godoc
// @Summary Add a routing operation
// @Tags Production Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Production order ID"
// @Param request body addOperationRequest true "Operation"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/production-orders/{id}/operations [post]
func (h *ProductionHandler) AddOperation(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req addOperationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	op, err := h.commands.AddOperation.Handle(r.Context(), command.AddOperationCommand{
		ProductionOrderID: id,
		WorkCenterID:      req.WorkCenterID,
		Sequence:          req.Sequence,
		Name:              req.Name,
		PlannedMinutes:    req.PlannedMinutes,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{Success: true, Data: op})
}

type qualityCheckRequest struct {
	Result      domain.QualityResult `json:"result"`
	SampleSize  int                  `json:"sample_size"`
	DefectCount int                  `json:"defect_count"`
	Notes       string               `json:"notes"`
}

// RecordQualityCheck godoc
// @Summary Record a quality check
// @Description The inspector is taken from the bearer token
// @Tags Production Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Production order ID"
// @Param request body qualityCheckRequest true "Inspection result"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/production-orders/{id}/quality-checks [post]
func (h *ProductionHandler) RecordQualityCheck(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req qualityCheckRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	check, err := h.commands.RecordQualityCheck.Handle(r.Context(), command.RecordQualityCheckCommand{
		ProductionOrderID: id,
		Inspector:         httpx.Username(r.Context()),
		Result:            req.Result,
		SampleSize:        req.SampleSize,
		DefectCount:       req.DefectCount,
		Notes:             req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{Success: true, Data: check})
}

type createWorkCenterRequest struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CapacityPerHour decimal.Decimal `json:"capacity_per_hour"`
}

// CreateWorkCenter godoc
// @Summary Create work center
// @Tags Work Centers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createWorkCenterRequest true "Work center"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/work-centers [post]
func (h *ProductionHandler) CreateWorkCenter(w http.ResponseWriter, r *http.Request) {
	var req createWorkCenterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	wc, err := h.commands.CreateWorkCenter.Handle(r.Context(), command.CreateWorkCenterCommand{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		CapacityPerHour: req.CapacityPerHour,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Work center created successfully",
		Data:    wc,
	})
}

// ListWorkCenters godoc
// @Summary List work centers
// @Tags Work Centers
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.Response
// @Router /api/work-centers [get]
func (h *ProductionHandler) ListWorkCenters(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r)
	centers, err := h.queries.ListCenters.Handle(r.Context(), limit, offset)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: centers})
}

// DeleteWorkCenter godoc
// @Summary Delete work center
// @Description Rejected with 409 while orders or operations reference it
// @Tags Work Centers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Work center ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/work-centers/{id} [delete]
func (h *ProductionHandler) DeleteWorkCenter(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.commands.DeleteWorkCenter.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Work center deleted successfully"})
}
