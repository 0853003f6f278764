package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/manufacturing-erp/internal/production/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/auth"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

// Commands groups the production write-side handlers
type Commands struct {
	CreateProduct      *command.CreateProductHandler
	UpdateProduct      *command.UpdateProductHandler
	DeleteProduct      *command.DeleteProductHandler
	CreateBOMEntry     *command.CreateBOMEntryHandler
	UpdateBOMEntry     *command.UpdateBOMEntryHandler
	DeleteBOMEntry     *command.DeleteBOMEntryHandler
	CreateOrder        *command.CreateProductionOrderHandler
	ChangeOrderStatus  *command.ChangeOrderStatusHandler
	CompleteOrder      *command.CompleteProductionOrderHandler
	DeleteOrder        *command.DeleteProductionOrderHandler
	AddOperation       *command.AddOperationHandler
	RecordQualityCheck *command.RecordQualityCheckHandler
	CreateWorkCenter   *command.CreateWorkCenterHandler
	DeleteWorkCenter   *command.DeleteWorkCenterHandler
}

// Queries groups the production read-side handlers
type Queries struct {
	Availability *query.MaterialAvailabilityHandler
	Usage        *query.MaterialUsageHandler
	Requirements *query.ProductionRequirementsHandler
	GetProduct   *query.GetProductHandler
	ListProducts *query.ListProductsHandler
	GetOrder     *query.GetProductionOrderHandler
	ListOrders   *query.ListProductionOrdersHandler
	ListCenters  *query.ListWorkCentersHandler
}

// ProductionHandler handles HTTP requests for planning, products, BOMs,
// production orders and work centers
type ProductionHandler struct {
	commands Commands
	queries  Queries
	auth     *httpx.Authenticator
	metrics  *httpx.Metrics
}

// NewProductionHandler creates a new production handler
func NewProductionHandler(commands Commands, queries Queries, authenticator *httpx.Authenticator, metrics *httpx.Metrics) *ProductionHandler {
	return &ProductionHandler{
		commands: commands,
		queries:  queries,
		auth:     authenticator,
		metrics:  metrics,
	}
}

// RegisterRoutes registers all production routes
func (h *ProductionHandler) RegisterRoutes(router *mux.Router) {
	read := h.auth.Require()
	plan := h.auth.Require(auth.RolePlanner)
	inspect := h.auth.Require(auth.RoleInspector)

	route := func(path, endpoint, method string, fn http.HandlerFunc) {
		router.HandleFunc(path, h.metrics.Instrument(endpoint, fn)).Methods(method)
	}

	route("/api/materials/{id:[0-9]+}/availability", "/api/materials/{id}/availability", "GET", read(h.MaterialAvailability))
	route("/api/materials/{id:[0-9]+}/usage", "/api/materials/{id}/usage", "GET", read(h.MaterialUsage))

	route("/api/products", "/api/products", "GET", read(h.ListProducts))
	route("/api/products", "/api/products", "POST", plan(h.CreateProduct))
	route("/api/products/{id:[0-9]+}", "/api/products/{id}", "GET", read(h.GetProduct))
	route("/api/products/{id:[0-9]+}", "/api/products/{id}", "PUT", plan(h.UpdateProduct))
	route("/api/products/{id:[0-9]+}", "/api/products/{id}", "DELETE", plan(h.DeleteProduct))
	route("/api/products/{id:[0-9]+}/bom", "/api/products/{id}/bom", "POST", plan(h.CreateBOMEntry))
	route("/api/bom-entries/{id:[0-9]+}", "/api/bom-entries/{id}", "PUT", plan(h.UpdateBOMEntry))
	route("/api/bom-entries/{id:[0-9]+}", "/api/bom-entries/{id}", "DELETE", plan(h.DeleteBOMEntry))

	route("/api/production-orders", "/api/production-orders", "GET", read(h.ListProductionOrders))
	route("/api/production-orders", "/api/production-orders", "POST", plan(h.CreateProductionOrder))
	route("/api/production-orders/{id:[0-9]+}", "/api/production-orders/{id}", "GET", read(h.GetProductionOrder))
	route("/api/production-orders/{id:[0-9]+}", "/api/production-orders/{id}", "DELETE", plan(h.DeleteProductionOrder))
	route("/api/production-orders/{id:[0-9]+}/requirements", "/api/production-orders/{id}/requirements", "GET", read(h.ProductionRequirements))
	route("/api/production-orders/{id:[0-9]+}/status", "/api/production-orders/{id}/status", "POST", plan(h.ChangeOrderStatus))
	route("/api/production-orders/{id:[0-9]+}/complete", "/api/production-orders/{id}/complete", "POST", plan(h.CompleteProductionOrder))
	route("/api/production-orders/{id:[0-9]+}/operations", "/api/production-orders/{id}/operations", "POST", plan(h.AddOperation))
	route("/api/production-orders/{id:[0-9]+}/quality-checks", "/api/production-orders/{id}/quality-checks", "POST", inspect(h.RecordQualityCheck))

	route("/api/work-centers", "/api/work-centers", "GET", read(h.ListWorkCenters))
	route("/api/work-centers", "/api/work-centers", "POST", plan(h.CreateWorkCenter))
	route("/api/work-centers/{id:[0-9]+}", "/api/work-centers/{id}", "DELETE", plan(h.DeleteWorkCenter))
}

// MaterialAvailability godoc
// @Summary Check material availability
// @Description Compares uncommitted stock against a required quantity. Open
// @Description production orders commit their BOM requirement, waste included.
// @Tags Planning
// @Security BearerAuth
// @Produce json
// @Param id path int true "Material ID"
// @Param required query number false "Required quantity" default(0)
// @Success 200 {object} httpx.Response{data=domain.AvailabilityResult}
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/materials/{id}/availability [get]
func (h *ProductionHandler) MaterialAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	required, err := httpx.QueryFloat(r, "required", 0)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	result, err := h.queries.Availability.Handle(r.Context(), query.MaterialAvailabilityQuery{
		MaterialID:       id,
		RequiredQuantity: required,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: result})
}

// MaterialUsage godoc
// @Summary Project material usage
// @Description Projected consumption of the material by every product whose BOM uses it
// @Tags Planning
// @Security BearerAuth
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} httpx.Response{data=domain.MaterialUsageReport}
// @Failure 404 {object} httpx.Response
// @Router /api/materials/{id}/usage [get]
func (h *ProductionHandler) MaterialUsage(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	report, err := h.queries.Usage.Handle(r.Context(), query.MaterialUsageQuery{MaterialID: id})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: report})
}

// ProductionRequirements godoc
// @Summary Material requirements of a production order
// @Tags Planning
// @Security BearerAuth
// @Produce json
// @Param id path int true "Production order ID"
// @Success 200 {object} httpx.Response{data=domain.ProductionRequirements}
// @Failure 404 {object} httpx.Response
// @Router /api/production-orders/{id}/requirements [get]
func (h *ProductionHandler) ProductionRequirements(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	reqs, err := h.queries.Requirements.Handle(r.Context(), query.ProductionRequirementsQuery{ProductionOrderID: id})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: reqs})
}
