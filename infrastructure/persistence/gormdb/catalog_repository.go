package gormdb

import (
	"context"

	"backoffice/domain/catalog"
	"backoffice/infrastructure/persistence"
	"backoffice/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// CatalogRepository answers reference data lookups.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *CatalogRepository) ExistingProductIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.getDB(ctx).
		Model(&po.ProductPO{}).
		Where("id IN ?", ids).
		Distinct().
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *CatalogRepository) CustomerExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &po.CustomerPO{}, id)
}

func (r *CatalogRepository) StaffExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &po.StaffPO{}, id)
}

func (r *CatalogRepository) exists(ctx context.Context, model interface{}, id int64) (bool, error) {
	var count int64
	if err := r.getDB(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ catalog.Repository = (*CatalogRepository)(nil)
