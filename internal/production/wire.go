//go:build wireinject
// +build wireinject

package production

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/inventory"
	invcommand "github.com/tair/manufacturing-erp/internal/inventory/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production/delivery/http"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/cache"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideBOMRepository,
	ProvideProductionOrderRepository,
	ProvideWorkCenterRepository,
	inventory.ProvideMaterialRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewUsageEvictor,
	command.NewCreateProductHandler,
	command.NewUpdateProductHandler,
	command.NewDeleteProductHandler,
	command.NewCreateBOMEntryHandler,
	command.NewUpdateBOMEntryHandler,
	command.NewDeleteBOMEntryHandler,
	command.NewCreateProductionOrderHandler,
	command.NewChangeOrderStatusHandler,
	command.NewCompleteProductionOrderHandler,
	command.NewDeleteProductionOrderHandler,
	command.NewAddOperationHandler,
	command.NewRecordQualityCheckHandler,
	command.NewCreateWorkCenterHandler,
	command.NewDeleteWorkCenterHandler,
	wire.Struct(new(http.Commands), "*"),
)

var QueryHandlerSet = wire.NewSet(
	query.NewMaterialAvailabilityHandler,
	query.NewMaterialUsageHandler,
	query.NewProductionRequirementsHandler,
	query.NewGetProductHandler,
	query.NewListProductsHandler,
	query.NewGetProductionOrderHandler,
	query.NewListProductionOrdersHandler,
	query.NewListWorkCentersHandler,
	wire.Struct(new(http.Queries), "*"),
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	tx *database.TxManager,
	policy domain.DemandPolicy,
	usageCache *cache.Cache,
	engineMetrics *query.Metrics,
	events invcommand.StockEventPublisher,
	authenticator *httpx.Authenticator,
	metrics *httpx.Metrics,
) (*http.ProductionHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewProductionHandler,
	)
	return nil, nil
}

// InitializeAvailabilityHandler initializes the availability engine for batch use
func InitializeAvailabilityHandler(
	db *gorm.DB,
	policy domain.DemandPolicy,
	engineMetrics *query.Metrics,
) (*query.MaterialAvailabilityHandler, error) {
	wire.Build(
		ProvideBOMRepository,
		inventory.ProvideMaterialRepository,
		query.NewMaterialAvailabilityHandler,
	)
	return nil, nil
}

// InitializeUsageEvictor initializes the usage report evictor handed to inventory
func InitializeUsageEvictor(db *gorm.DB, usageCache *cache.Cache) (*command.UsageEvictor, error) {
	wire.Build(
		ProvideBOMRepository,
		command.NewUsageEvictor,
	)
	return nil, nil
}
