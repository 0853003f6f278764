//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/inventory/delivery/http"
	"github.com/tair/manufacturing-erp/internal/inventory/usecase/command"
	"github.com/tair/manufacturing-erp/internal/inventory/usecase/query"
	"github.com/tair/manufacturing-erp/pkg/httpx"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideMaterialRepository,
	ProvideMaterialTypeRepository,
	ProvideUnitOfMeasureRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateMaterialHandler,
	command.NewUpdateMaterialHandler,
	command.NewDeleteMaterialHandler,
	command.NewAdjustStockHandler,
	command.NewCreateMaterialTypeHandler,
	command.NewDeleteMaterialTypeHandler,
	command.NewCreateUnitHandler,
	command.NewDeleteUnitHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetMaterialHandler,
	query.NewListMaterialsHandler,
	query.NewListLowStockHandler,
	query.NewListMaterialTypesHandler,
	query.NewListUnitsHandler,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	events command.StockEventPublisher,
	evictor command.ReportEvictor,
	authenticator *httpx.Authenticator,
	metrics *httpx.Metrics,
) (*http.MaterialHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewMaterialHandler,
	)
	return nil, nil
}
