package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
)

// GormProductRepository stores products with GORM
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return database.TranslateError(database.Conn(ctx, r.db).Omit(clause.Associations).Create(product).Error)
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := database.Conn(ctx, r.db).
		Preload("BOMEntries", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("BOMEntries.Material.UnitOfMeasure").
		First(&product, id).Error
	if err != nil {
		return nil, lookupError(err, "product", id)
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := database.Conn(ctx, r.db)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var products []domain.Product
	err := q.Order("id").Limit(filter.Limit).Offset(filter.Offset).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	err := database.Conn(ctx, r.db).Model(product).
		Select("sku", "name", "description", "status", "updated_at").
		Updates(product).Error
	return database.TranslateError(err)
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &domain.Product{}, "product", id)
}

func (r *GormProductRepository) CountBOMEntries(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.BOMEntry{}, "product_id = ?", id)
}

func (r *GormProductRepository) CountProductionOrders(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.ProductionOrder{}, "product_id = ?", id)
}

// GormBOMRepository stores bill of materials entries with GORM
type GormBOMRepository struct {
	db *gorm.DB
}

func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

func (r *GormBOMRepository) Create(ctx context.Context, entry *domain.BOMEntry) error {
	return database.TranslateError(database.Conn(ctx, r.db).Omit(clause.Associations).Create(entry).Error)
}

func (r *GormBOMRepository) FindByID(ctx context.Context, id uint) (*domain.BOMEntry, error) {
	var entry domain.BOMEntry
	if err := database.Conn(ctx, r.db).Preload("Material.UnitOfMeasure").First(&entry, id).Error; err != nil {
		return nil, lookupError(err, "BOM entry", id)
	}
	return &entry, nil
}

func (r *GormBOMRepository) FindByProduct(ctx context.Context, productID uint) ([]domain.BOMEntry, error) {
	var entries []domain.BOMEntry
	err := database.Conn(ctx, r.db).
		Preload("Material.UnitOfMeasure").
		Where("product_id = ?", productID).
		Order("id").
		Find(&entries).Error
	return entries, err
}

func (r *GormBOMRepository) FindByMaterialWithOpenOrders(
	ctx context.Context,
	materialID uint,
	statuses []domain.ProductionOrderStatus,
) ([]domain.BOMEntry, error) {
	var entries []domain.BOMEntry
	err := database.Conn(ctx, r.db).
		Preload("Product").
		Preload("Product.ProductionOrders", "status IN ?", statuses).
		Where("material_id = ?", materialID).
		Order("id").
		Find(&entries).Error
	return entries, err
}

func (r *GormBOMRepository) Update(ctx context.Context, entry *domain.BOMEntry) error {
	err := database.Conn(ctx, r.db).Model(entry).
		Select("quantity_needed", "waste_percentage", "notes", "updated_at").
		Updates(entry).Error
	return database.TranslateError(err)
}

func (r *GormBOMRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &domain.BOMEntry{}, "BOM entry", id)
}

// GormProductionOrderRepository stores production orders with GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

func (r *GormProductionOrderRepository) Create(ctx context.Context, order *domain.ProductionOrder) error {
	return database.TranslateError(database.Conn(ctx, r.db).Omit(clause.Associations).Create(order).Error)
}

func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uint) (*domain.ProductionOrder, error) {
	var order domain.ProductionOrder
	err := database.Conn(ctx, r.db).
		Preload("Product").
		Preload("WorkCenter").
		Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("sequence, id") }).
		Preload("QualityChecks", func(db *gorm.DB) *gorm.DB { return db.Order("checked_at, id") }).
		First(&order, id).Error
	if err != nil {
		return nil, lookupError(err, "production order", id)
	}
	return &order, nil
}

func (r *GormProductionOrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.ProductionOrder, error) {
	q := database.Conn(ctx, r.db).Preload("Product")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	var orders []domain.ProductionOrder
	err := q.Order("id").Limit(filter.Limit).Offset(filter.Offset).Find(&orders).Error
	return orders, err
}

func (r *GormProductionOrderRepository) LockByID(ctx context.Context, id uint) (*domain.ProductionOrder, error) {
	var order domain.ProductionOrder
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error
	if err != nil {
		return nil, lookupError(err, "production order", id)
	}
	return &order, nil
}

func (r *GormProductionOrderRepository) Update(ctx context.Context, order *domain.ProductionOrder) error {
	err := database.Conn(ctx, r.db).Model(order).
		Select("work_center_id", "quantity", "status", "planned_start", "planned_end",
			"actual_start", "actual_end", "notes", "updated_at").
		Updates(order).Error
	return database.TranslateError(err)
}

func (r *GormProductionOrderRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &domain.ProductionOrder{}, "production order", id)
}

func (r *GormProductionOrderRepository) AddOperation(ctx context.Context, op *domain.ProductionOperation) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(op).Error)
}

func (r *GormProductionOrderRepository) AddQualityCheck(ctx context.Context, check *domain.QualityCheck) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(check).Error)
}

func (r *GormProductionOrderRepository) CountOperations(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.ProductionOperation{}, "production_order_id = ?", id)
}

func (r *GormProductionOrderRepository) CountQualityChecks(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.QualityCheck{}, "production_order_id = ?", id)
}

// GormWorkCenterRepository stores work centers with GORM
type GormWorkCenterRepository struct {
	db *gorm.DB
}

func NewGormWorkCenterRepository(db *gorm.DB) *GormWorkCenterRepository {
	return &GormWorkCenterRepository{db: db}
}

func (r *GormWorkCenterRepository) Create(ctx context.Context, wc *domain.WorkCenter) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(wc).Error)
}

func (r *GormWorkCenterRepository) FindByID(ctx context.Context, id uint) (*domain.WorkCenter, error) {
	var wc domain.WorkCenter
	if err := database.Conn(ctx, r.db).First(&wc, id).Error; err != nil {
		return nil, lookupError(err, "work center", id)
	}
	return &wc, nil
}

func (r *GormWorkCenterRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.WorkCenter, error) {
	var centers []domain.WorkCenter
	err := database.Conn(ctx, r.db).Order("code").Limit(limit).Offset(offset).Find(&centers).Error
	return centers, err
}

func (r *GormWorkCenterRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &domain.WorkCenter{}, "work center", id)
}

func (r *GormWorkCenterRepository) CountProductionOrders(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.ProductionOrder{}, "work_center_id = ?", id)
}

func (r *GormWorkCenterRepository) CountOperations(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.ProductionOperation{}, "work_center_id = ?", id)
}

func count(ctx context.Context, db *gorm.DB, model interface{}, where string, args ...interface{}) (int64, error) {
	var n int64
	err := database.Conn(ctx, db).Model(model).Where(where, args...).Count(&n).Error
	return n, err
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, entity string, id uint) error {
	res := database.Conn(ctx, db).Delete(model, id)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(entity, id)
	}
	return nil
}

func lookupError(err error, entity string, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound(entity, id)
	}
	return err
}
