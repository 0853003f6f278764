package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
)

// GormSupplierRepository stores suppliers with GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

func (r *GormSupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(supplier).Error)
}

func (r *GormSupplierRepository) FindByID(ctx context.Context, id uint) (*domain.Supplier, error) {
	var supplier domain.Supplier
	if err := database.Conn(ctx, r.db).First(&supplier, id).Error; err != nil {
		return nil, lookupError(err, "supplier", id)
	}
	return &supplier, nil
}

func (r *GormSupplierRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := database.Conn(ctx, r.db).Order("id").Limit(limit).Offset(offset).Find(&suppliers).Error
	return suppliers, err
}

func (r *GormSupplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	err := database.Conn(ctx, r.db).Model(supplier).
		Select("code", "name", "contact_email", "phone", "address", "updated_at").
		Updates(supplier).Error
	return database.TranslateError(err)
}

func (r *GormSupplierRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &domain.Supplier{}, "supplier", id)
}

func (r *GormSupplierRepository) CountPurchaseOrders(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.PurchaseOrder{}, "supplier_id = ?", id)
}

// GormPurchaseOrderRepository stores purchase orders with GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *domain.PurchaseOrder) error {
	return database.TranslateError(database.Conn(ctx, r.db).Omit(clause.Associations).Create(order).Error)
}

func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	err := database.Conn(ctx, r.db).
		Preload("Supplier").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Lines.Material").
		First(&order, id).Error
	if err != nil {
		return nil, lookupError(err, "purchase order", id)
	}
	return &order, nil
}

func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter domain.PurchaseOrderFilter) ([]domain.PurchaseOrder, error) {
	q := database.Conn(ctx, r.db).Preload("Supplier")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != 0 {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}

	var orders []domain.PurchaseOrder
	err := q.Order("id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&orders).Error
	return orders, err
}

func (r *GormPurchaseOrderRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := database.Conn(ctx, r.db).Model(&domain.PurchaseOrder{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *GormPurchaseOrderRepository) LockByID(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error
	if err != nil {
		return nil, lookupError(err, "purchase order", id)
	}
	return &order, nil
}

func (r *GormPurchaseOrderRepository) UpdateTotal(ctx context.Context, id uint, total decimal.Decimal, at time.Time) error {
	res := database.Conn(ctx, r.db).Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"total_amount": total, "updated_at": at})
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("purchase order", id)
	}
	return nil
}

func (r *GormPurchaseOrderRepository) UpdateStatus(ctx context.Context, id uint, status domain.PurchaseOrderStatus) error {
	res := database.Conn(ctx, r.db).Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("purchase order", id)
	}
	return nil
}

func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &domain.PurchaseOrder{}, "purchase order", id)
}

func (r *GormPurchaseOrderRepository) CountLines(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &domain.PurchaseOrderLine{}, "purchase_order_id = ?", id)
}

// GormPurchaseOrderLineRepository stores purchase order lines with GORM
type GormPurchaseOrderLineRepository struct {
	db *gorm.DB
}

func NewGormPurchaseOrderLineRepository(db *gorm.DB) *GormPurchaseOrderLineRepository {
	return &GormPurchaseOrderLineRepository{db: db}
}

func (r *GormPurchaseOrderLineRepository) Create(ctx context.Context, line *domain.PurchaseOrderLine) error {
	return database.TranslateError(database.Conn(ctx, r.db).Omit(clause.Associations).Create(line).Error)
}

func (r *GormPurchaseOrderLineRepository) FindByID(ctx context.Context, id uint) (*domain.PurchaseOrderLine, error) {
	var line domain.PurchaseOrderLine
	if err := database.Conn(ctx, r.db).First(&line, id).Error; err != nil {
		return nil, lookupError(err, "purchase order line", id)
	}
	return &line, nil
}

func (r *GormPurchaseOrderLineRepository) FindByOrder(ctx context.Context, purchaseOrderID uint) ([]domain.PurchaseOrderLine, error) {
	var lines []domain.PurchaseOrderLine
	err := database.Conn(ctx, r.db).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("id").
		Find(&lines).Error
	return lines, err
}

func (r *GormPurchaseOrderLineRepository) Update(ctx context.Context, line *domain.PurchaseOrderLine) error {
	err := database.Conn(ctx, r.db).Model(line).
		Select("material_id", "quantity", "unit_price", "received_quantity", "status", "updated_at").
		Updates(line).Error
	return database.TranslateError(err)
}

func (r *GormPurchaseOrderLineRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &domain.PurchaseOrderLine{}, "purchase order line", id)
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

// GormProcessedEventRepository stores processed event ids with GORM
type GormProcessedEventRepository struct {
	db *gorm.DB
}

func NewGormProcessedEventRepository(db *gorm.DB) *GormProcessedEventRepository {
	return &GormProcessedEventRepository{db: db}
}

func (r *GormProcessedEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	// a duplicate must not abort the surrounding transaction
	res := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(&domain.ProcessedEvent{EventID: eventID, EventType: eventType, ProcessedAt: time.Now().UTC()})
	if res.Error != nil {
		return false, database.TranslateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
