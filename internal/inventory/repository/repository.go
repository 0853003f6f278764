package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	production "github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/database"
)

// GormMaterialRepository stores materials with GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

func (r *GormMaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	err := database.Conn(ctx, r.db).Omit(clause.Associations).Create(material).Error
	return database.TranslateError(err)
}

func (r *GormMaterialRepository) FindByID(ctx context.Context, id uint) (*domain.Material, error) {
	var material domain.Material
	err := database.Conn(ctx, r.db).
		Preload("MaterialType").
		Preload("UnitOfMeasure").
		First(&material, id).Error
	if err != nil {
		return nil, lookupError(err, "material", id)
	}
	return &material, nil
}

func (r *GormMaterialRepository) FindAll(ctx context.Context, filter domain.MaterialFilter) ([]domain.Material, error) {
	q := database.Conn(ctx, r.db).Preload("UnitOfMeasure")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.MaterialTypeID != 0 {
		q = q.Where("material_type_id = ?", filter.MaterialTypeID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}

	var materials []domain.Material
	err := q.Order("id").Limit(filter.Limit).Offset(filter.Offset).Find(&materials).Error
	return materials, err
}

func (r *GormMaterialRepository) FindBelowMinimum(ctx context.Context, limit, offset int) ([]domain.Material, error) {
	var materials []domain.Material
	err := database.Conn(ctx, r.db).
		Preload("UnitOfMeasure").
		Where("current_stock < minimum_stock_level").
		Order("id").
		Limit(limit).Offset(offset).
		Find(&materials).Error
	return materials, err
}

func (r *GormMaterialRepository) Update(ctx context.Context, material *domain.Material) error {
	// current_stock only moves through AdjustStock
	err := database.Conn(ctx, r.db).Model(material).
		Select("sku", "name", "description", "material_type_id", "unit_of_measure_id",
			"cost_per_unit", "minimum_stock_level", "status", "updated_at").
		Updates(material).Error
	return database.TranslateError(err)
}

func (r *GormMaterialRepository) Delete(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&domain.Material{}, id)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("material", id)
	}
	return nil
}

func (r *GormMaterialRepository) AdjustStock(ctx context.Context, id uint, delta int64) (*domain.Material, error) {
	q := database.Conn(ctx, r.db).Model(&domain.Material{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("current_stock >= ?", -delta)
	}
	res := q.Updates(map[string]interface{}{
		"current_stock": gorm.Expr("current_stock + ?", delta),
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return nil, res.Error
	}

	material, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, apperror.Conflict("insufficient stock for material %s: %d on hand, %d requested",
			material.SKU, material.CurrentStock, -delta)
	}
	return material, nil
}

func (r *GormMaterialRepository) CountBOMReferences(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&production.BOMEntry{}).Where("material_id = ?", id).Count(&count).Error
	return count, err
}

// GormMaterialTypeRepository stores material types with GORM
type GormMaterialTypeRepository struct {
	db *gorm.DB
}

func NewGormMaterialTypeRepository(db *gorm.DB) *GormMaterialTypeRepository {
	return &GormMaterialTypeRepository{db: db}
}

func (r *GormMaterialTypeRepository) Create(ctx context.Context, materialType *domain.MaterialType) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(materialType).Error)
}

func (r *GormMaterialTypeRepository) FindByID(ctx context.Context, id uint) (*domain.MaterialType, error) {
	var materialType domain.MaterialType
	if err := database.Conn(ctx, r.db).First(&materialType, id).Error; err != nil {
		return nil, lookupError(err, "material type", id)
	}
	return &materialType, nil
}

func (r *GormMaterialTypeRepository) FindAll(ctx context.Context) ([]domain.MaterialType, error) {
	var types []domain.MaterialType
	err := database.Conn(ctx, r.db).Order("name").Find(&types).Error
	return types, err
}

func (r *GormMaterialTypeRepository) Delete(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&domain.MaterialType{}, id)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("material type", id)
	}
	return nil
}

func (r *GormMaterialTypeRepository) CountMaterials(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&domain.Material{}).Where("material_type_id = ?", id).Count(&count).Error
	return count, err
}

// GormUnitOfMeasureRepository stores units of measure with GORM
type GormUnitOfMeasureRepository struct {
	db *gorm.DB
}

func NewGormUnitOfMeasureRepository(db *gorm.DB) *GormUnitOfMeasureRepository {
	return &GormUnitOfMeasureRepository{db: db}
}

func (r *GormUnitOfMeasureRepository) Create(ctx context.Context, unit *domain.UnitOfMeasure) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(unit).Error)
}

func (r *GormUnitOfMeasureRepository) FindByID(ctx context.Context, id uint) (*domain.UnitOfMeasure, error) {
	var unit domain.UnitOfMeasure
	if err := database.Conn(ctx, r.db).First(&unit, id).Error; err != nil {
		return nil, lookupError(err, "unit of measure", id)
	}
	return &unit, nil
}

func (r *GormUnitOfMeasureRepository) FindAll(ctx context.Context) ([]domain.UnitOfMeasure, error) {
	var units []domain.UnitOfMeasure
	err := database.Conn(ctx, r.db).Order("name").Find(&units).Error
	return units, err
}

func (r *GormUnitOfMeasureRepository) Delete(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&domain.UnitOfMeasure{}, id)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("unit of measure", id)
	}
	return nil
}

func (r *GormUnitOfMeasureRepository) CountMaterials(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&domain.Material{}).Where("unit_of_measure_id = ?", id).Count(&count).Error
	return count, err
}

func lookupError(err error, entity string, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound(entity, id)
	}
	return err
}
