package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/internal/procurement/usecase/command"
	"github.com/tair/manufacturing-erp/internal/procurement/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/auth"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

// PurchasingHandler handles HTTP requests for suppliers and purchase orders
type PurchasingHandler struct {
	// Command handlers
	createSupplierHandler *command.CreateSupplierHandler
	updateSupplierHandler *command.UpdateSupplierHandler
	deleteSupplierHandler *command.DeleteSupplierHandler
	createOrderHandler    *command.CreatePurchaseOrderHandler
	changeStatusHandler   *command.ChangePOStatusHandler
	deleteOrderHandler    *command.DeletePurchaseOrderHandler
	recomputeHandler      *command.RecomputeTotalHandler
	addLineHandler        *command.AddLineHandler
	updateLineHandler     *command.UpdateLineHandler
	deleteLineHandler     *command.DeleteLineHandler
	receiveLineHandler    *command.ReceiveLineHandler

	// Query handlers
	getSupplierHandler  *query.GetSupplierHandler
	listSupplierHandler *query.ListSuppliersHandler
	getOrderHandler     *query.GetPurchaseOrderHandler
	listOrderHandler    *query.ListPurchaseOrdersHandler

	auth    *httpx.Authenticator
	metrics *httpx.Metrics
}

// NewPurchasingHandler creates a new purchasing handler
func NewPurchasingHandler(
	createSupplierHandler *command.CreateSupplierHandler,
	updateSupplierHandler *command.UpdateSupplierHandler,
	deleteSupplierHandler *command.DeleteSupplierHandler,
	createOrderHandler *command.CreatePurchaseOrderHandler,
	changeStatusHandler *command.ChangePOStatusHandler,
	deleteOrderHandler *command.DeletePurchaseOrderHandler,
	recomputeHandler *command.RecomputeTotalHandler,
	addLineHandler *command.AddLineHandler,
	updateLineHandler *command.UpdateLineHandler,
	deleteLineHandler *command.DeleteLineHandler,
	receiveLineHandler *command.ReceiveLineHandler,
	getSupplierHandler *query.GetSupplierHandler,
	listSupplierHandler *query.ListSuppliersHandler,
	getOrderHandler *query.GetPurchaseOrderHandler,
	listOrderHandler *query.ListPurchaseOrdersHandler,
	authenticator *httpx.Authenticator,
	metrics *httpx.Metrics,
) *PurchasingHandler {
	return &PurchasingHandler{
		createSupplierHandler: createSupplierHandler,
		updateSupplierHandler: updateSupplierHandler,
		deleteSupplierHandler: deleteSupplierHandler,
		createOrderHandler:    createOrderHandler,
		changeStatusHandler:   changeStatusHandler,
		deleteOrderHandler:    deleteOrderHandler,
		recomputeHandler:      recomputeHandler,
		addLineHandler:        addLineHandler,
		updateLineHandler:     updateLineHandler,
		deleteLineHandler:     deleteLineHandler,
		receiveLineHandler:    receiveLineHandler,
		getSupplierHandler:    getSupplierHandler,
		listSupplierHandler:   listSupplierHandler,
		getOrderHandler:       getOrderHandler,
		listOrderHandler:      listOrderHandler,
		auth:                  authenticator,
		metrics:               metrics,
	}
}

// RegisterRoutes registers all procurement routes
func (h *PurchasingHandler) RegisterRoutes(router *mux.Router) {
	read := h.auth.Require()
	buy := h.auth.Require(auth.RolePurchaser)

	router.HandleFunc("/api/suppliers", h.metrics.Instrument("/api/suppliers", read(h.ListSuppliers))).Methods("GET")
	router.HandleFunc("/api/suppliers", h.metrics.Instrument("/api/suppliers", buy(h.CreateSupplier))).Methods("POST")
	router.HandleFunc("/api/suppliers/{id:[0-9]+}", h.metrics.Instrument("/api/suppliers/{id}", read(h.GetSupplier))).Methods("GET")
	router.HandleFunc("/api/suppliers/{id:[0-9]+}", h.metrics.Instrument("/api/suppliers/{id}", buy(h.UpdateSupplier))).Methods("PUT")
	router.HandleFunc("/api/suppliers/{id:[0-9]+}", h.metrics.Instrument("/api/suppliers/{id}", buy(h.DeleteSupplier))).Methods("DELETE")

	router.HandleFunc("/api/purchase-orders", h.metrics.Instrument("/api/purchase-orders", read(h.ListPurchaseOrders))).Methods("GET")
	router.HandleFunc("/api/purchase-orders", h.metrics.Instrument("/api/purchase-orders", buy(h.CreatePurchaseOrder))).Methods("POST")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}", h.metrics.Instrument("/api/purchase-orders/{id}", read(h.GetPurchaseOrder))).Methods("GET")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}", h.metrics.Instrument("/api/purchase-orders/{id}", buy(h.DeletePurchaseOrder))).Methods("DELETE")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}/status", h.metrics.Instrument("/api/purchase-orders/{id}/status", buy(h.ChangeStatus))).Methods("POST")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}/recompute", h.metrics.Instrument("/api/purchase-orders/{id}/recompute", buy(h.RecomputeTotal))).Methods("POST")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}/lines", h.metrics.Instrument("/api/purchase-orders/{id}/lines", buy(h.AddLine))).Methods("POST")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}/lines/{lineId:[0-9]+}", h.metrics.Instrument("/api/purchase-orders/{id}/lines/{lineId}", buy(h.UpdateLine))).Methods("PUT")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}/lines/{lineId:[0-9]+}", h.metrics.Instrument("/api/purchase-orders/{id}/lines/{lineId}", buy(h.DeleteLine))).Methods("DELETE")
	router.HandleFunc("/api/purchase-orders/{id:[0-9]+}/lines/{lineId:[0-9]+}/receive", h.metrics.Instrument("/api/purchase-orders/{id}/lines/{lineId}/receive", buy(h.ReceiveLine))).Methods("POST")
}

func lineIDs(r *http.Request) (orderID, lineID uint, err error) {
	if orderID, err = httpx.PathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if lineID, err = httpx.PathID(r, "lineId"); err != nil {
		return 0, 0, err
	}
	return orderID, lineID, nil
}

type lineRequest struct {
	MaterialID uint            `json:"material_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type createPurchaseOrderRequest struct {
	SupplierID   uint          `json:"supplier_id"`
	ExpectedDate *time.Time    `json:"expected_date"`
	Notes        string        `json:"notes"`
	Lines        []lineRequest `json:"lines"`
}

// CreatePurchaseOrder godoc
// @Summary Create purchase order
// @Description Creates a DRAFT order, optionally with lines. The total is computed from the lines.
// @Tags Purchase Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createPurchaseOrderRequest true "Purchase order"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Router /api/purchase-orders [post]
func (h *PurchasingHandler) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	cmd := command.CreatePurchaseOrderCommand{
		SupplierID:   req.SupplierID,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
	}
	for _, line := range req.Lines {
		cmd.Lines = append(cmd.Lines, command.LineInput{
			MaterialID: line.MaterialID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}

	order, err := h.createOrderHandler.Handle(r.Context(), cmd)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Purchase order created successfully",
		Data:    order,
	})
}

// GetPurchaseOrder godoc
// @Summary Get purchase order with lines
// @Tags Purchase Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Purchase order ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/purchase-orders/{id} [get]
func (h *PurchasingHandler) GetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	order, err := h.getOrderHandler.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: order})
}

// ListPurchaseOrders godoc
// @Summary List purchase orders
// @Tags Purchase Orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Param supplier_id query int false "Supplier"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.Response
// @Router /api/purchase-orders [get]
func (h *PurchasingHandler) ListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r)
	q := query.ListPurchaseOrdersQuery{
		Status: domain.PurchaseOrderStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("supplier_id"); raw != "" {
		supplierID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httpx.RespondError(w, r, apperror.Validation("invalid supplier_id"))
			return
		}
		q.SupplierID = uint(supplierID)
	}

	orders, err := h.listOrderHandler.Handle(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: orders})
}

type changeStatusRequest struct {
	Status domain.PurchaseOrderStatus `json:"status"`
}

// ChangeStatus godoc
// @Summary Move a purchase order to another status
// @Tags Purchase Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Purchase order ID"
// @Param request body changeStatusRequest true "Target status"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/purchase-orders/{id}/status [post]
func (h *PurchasingHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.changeStatusHandler.Handle(r.Context(), command.ChangePOStatusCommand{ID: id, Status: req.Status})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Purchase order status updated",
		Data:    order,
	})
}

// RecomputeTotal godoc
// @Summary Recompute a purchase order total from its lines
// @Tags Purchase Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Purchase order ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/purchase-orders/{id}/recompute [post]
func (h *PurchasingHandler) RecomputeTotal(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if _, err := h.getOrderHandler.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if !h.recomputeHandler.Handle(r.Context(), id) {
		httpx.RespondError(w, r, apperror.Storage("failed to recompute purchase order total", errors.New("recompute failed")))
		return
	}

	order, err := h.getOrderHandler.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: order})
}

// DeletePurchaseOrder godoc
// @Summary Delete purchase order
// @Description Rejected with 409 while the order has lines
// @Tags Purchase Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Purchase order ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/purchase-orders/{id} [delete]
func (h *PurchasingHandler) DeletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.deleteOrderHandler.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Purchase order deleted successfully"})
}

// AddLine godoc
// @Summary Add a purchase order line
// @Description The order total is recomputed before the response is sent
// @Tags Purchase Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Purchase order ID"
// @Param request body lineRequest true "Line"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/purchase-orders/{id}/lines [post]
func (h *PurchasingHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req lineRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	line, err := h.addLineHandler.Handle(r.Context(), command.AddLineCommand{
		PurchaseOrderID: id,
		MaterialID:      req.MaterialID,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Line added successfully",
		Data:    line,
	})
}

type updateLineRequest struct {
	MaterialID *uint            `json:"material_id"`
	Quantity   *int64           `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
}

// UpdateLine godoc
// @Summary Update a purchase order line
// @Tags Purchase Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Purchase order ID"
// @Param lineId path int true "Line ID"
// @Param request body updateLineRequest true "Fields to change"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/purchase-orders/{id}/lines/{lineId} [put]
func (h *PurchasingHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	orderID, lineID, err := lineIDs(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req updateLineRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	line, err := h.updateLineHandler.Handle(r.Context(), command.UpdateLineCommand{
		PurchaseOrderID: orderID,
		LineID:          lineID,
		MaterialID:      req.MaterialID,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Line updated successfully",
		Data:    line,
	})
}

// DeleteLine godoc
// @Summary Delete a purchase order line
// @Tags Purchase Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Purchase order ID"
// @Param lineId path int true "Line ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/purchase-orders/{id}/lines/{lineId} [delete]
func (h *PurchasingHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	orderID, lineID, err := lineIDs(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.deleteLineHandler.Handle(r.Context(), command.DeleteLineCommand{PurchaseOrderID: orderID, LineID: lineID}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Line deleted successfully"})
}

type receiveLineRequest struct {
	Quantity int64 `json:"quantity"`
}

// ReceiveLine godoc
// @Summary Receive goods against a purchase order line
// @Description Adds the quantity to material stock
// @Tags Purchase Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Purchase order ID"
// @Param lineId path int true "Line ID"
// @Param request body receiveLineRequest true "Received quantity"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/purchase-orders/{id}/lines/{lineId}/receive [post]
func (h *PurchasingHandler) ReceiveLine(w http.ResponseWriter, r *http.Request) {
	orderID, lineID, err := lineIDs(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req receiveLineRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	line, err := h.receiveLineHandler.Handle(r.Context(), command.ReceiveLineCommand{
		PurchaseOrderID: orderID,
		LineID:          lineID,
		Quantity:        req.Quantity,
		ReceivedBy:      httpx.Username(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Goods received",
		Data:    line,
	})
}
