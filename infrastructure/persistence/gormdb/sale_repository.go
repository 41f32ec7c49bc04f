package gormdb

import (
	"context"
	"errors"

	"backoffice/domain/sale"
	"backoffice/infrastructure/persistence"
	"backoffice/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// SaleRepository GORM implementation of sale.Repository
type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// getDB returns the transaction from context if available, otherwise the default db
func (r *SaleRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Create inserts the sale row and then its pending orders.
// Outside a unit of work it opens its own transaction.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.createWithTx(tx, s)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.createWithTx(tx, s)
	})
}

func (r *SaleRepository) createWithTx(tx *gorm.DB, s *sale.Sale) error {
	salePO := po.FromSaleDomain(s)
	salePO.ID = 0
	if err := tx.Create(salePO).Error; err != nil {
		return err
	}
	s.AssignIdentity(salePO.ID)

	return insertOrders(tx, s.Orders())
}

func (r *SaleRepository) FindByID(ctx context.Context, id int64) (*sale.Sale, error) {
	var salePO po.SalePO
	if err := r.getDB(ctx).First(&salePO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.NewSaleNotFoundError()
		}
		return nil, err
	}
	return salePO.ToDomain(), nil
}

// Save writes back the only mutable columns of a sale.
func (r *SaleRepository) Save(ctx context.Context, s *sale.Sale) error {
	salePO := po.FromSaleDomain(s)
	result := r.getDB(ctx).
		Model(&po.SalePO{}).
		Where("id = ?", salePO.ID).
		Updates(map[string]interface{}{
			"paid":      salePO.Paid,
			"date_paid": salePO.DatePaid,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sale.NewSaleNotFoundError()
	}
	return nil
}

// Delete removes the orders of the sale and then the sale itself.
func (r *SaleRepository) Delete(ctx context.Context, id int64) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.deleteWithTx(tx, id)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.deleteWithTx(tx, id)
	})
}

func (r *SaleRepository) deleteWithTx(tx *gorm.DB, id int64) error {
	if err := tx.Where("sale_id = ?", id).Delete(&po.OrderPO{}).Error; err != nil {
		return err
	}
	result := tx.Where("id = ?", id).Delete(&po.SalePO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sale.NewSaleNotFoundError()
	}
	return nil
}

var _ sale.Repository = (*SaleRepository)(nil)
