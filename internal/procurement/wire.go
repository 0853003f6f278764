//go:build wireinject
// +build wireinject

package procurement

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/inventory"
	"github.com/tair/manufacturing-erp/internal/procurement/delivery/events"
	"github.com/tair/manufacturing-erp/internal/procurement/delivery/http"
	"github.com/tair/manufacturing-erp/internal/procurement/usecase/command"
	"github.com/tair/manufacturing-erp/internal/procurement/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideSupplierRepository,
	ProvidePurchaseOrderRepository,
	ProvidePurchaseOrderLineRepository,
	inventory.ProvideMaterialRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewAggregator,
	command.NewLineHandlers,
	command.NewCreateSupplierHandler,
	command.NewUpdateSupplierHandler,
	command.NewDeleteSupplierHandler,
	command.NewCreatePurchaseOrderHandler,
	command.NewChangePOStatusHandler,
	command.NewDeletePurchaseOrderHandler,
	command.NewRecomputeTotalHandler,
	command.NewAddLineHandler,
	command.NewUpdateLineHandler,
	command.NewDeleteLineHandler,
	command.NewReceiveLineHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetSupplierHandler,
	query.NewListSuppliersHandler,
	query.NewGetPurchaseOrderHandler,
	query.NewListPurchaseOrdersHandler,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	tx *database.TxManager,
	totals command.TotalPublisher,
	aggregatorMetrics *command.Metrics,
	authenticator *httpx.Authenticator,
	metrics *httpx.Metrics,
) (*http.PurchasingHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewPurchasingHandler,
	)
	return nil, nil
}

// InitializeGoodsReceivedSubscriber initializes the goods received consumer handler
func InitializeGoodsReceivedSubscriber(db *gorm.DB, tx *database.TxManager) (*events.GoodsReceivedSubscriber, error) {
	wire.Build(
		RepositorySet,
		ProvideProcessedEventRepository,
		command.NewReceiveLineHandler,
		events.NewGoodsReceivedSubscriber,
	)
	return nil, nil
}

// InitializeRecomputeTotalHandler initializes the aggregator for batch use
func InitializeRecomputeTotalHandler(
	db *gorm.DB,
	tx *database.TxManager,
	totals command.TotalPublisher,
	aggregatorMetrics *command.Metrics,
) (*command.RecomputeTotalHandler, error) {
	wire.Build(
		ProvidePurchaseOrderRepository,
		ProvidePurchaseOrderLineRepository,
		command.NewAggregator,
		command.NewRecomputeTotalHandler,
	)
	return nil, nil
}
