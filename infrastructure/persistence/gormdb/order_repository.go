package gormdb

import (
	"context"
	"errors"

	"backoffice/domain/sale"
	"backoffice/infrastructure/persistence"
	"backoffice/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// OrderRepository GORM implementation of sale.OrderRepository.
// Bulk operations are single statements keyed by id IN (...).
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *OrderRepository) InsertBatch(ctx context.Context, orders []*sale.Order) error {
	return insertOrders(r.getDB(ctx), orders)
}

// insertOrders creates the rows in one statement and hands the generated
// ids back to the domain orders.
func insertOrders(db *gorm.DB, orders []*sale.Order) error {
	if len(orders) == 0 {
		return nil
	}
	orderPOs := make([]*po.OrderPO, len(orders))
	for i, o := range orders {
		orderPOs[i] = po.FromOrderDomain(o)
		orderPOs[i].ID = 0
	}
	if err := db.Create(&orderPOs).Error; err != nil {
		return err
	}
	for i, o := range orders {
		o.AssignIdentity(orderPOs[i].ID)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*sale.Order, error) {
	var orderPO po.OrderPO
	if err := r.getDB(ctx).First(&orderPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.NewOrderNotFoundError()
		}
		return nil, err
	}
	return orderPO.ToDomain(), nil
}

func (r *OrderRepository) FindByIDs(ctx context.Context, ids []int64) ([]*sale.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orderPOs []po.OrderPO
	if err := r.getDB(ctx).Where("id IN ?", ids).Order("id").Find(&orderPOs).Error; err != nil {
		return nil, err
	}
	orders := make([]*sale.Order, len(orderPOs))
	for i := range orderPOs {
		orders[i] = orderPOs[i].ToDomain()
	}
	return orders, nil
}

// Save writes back delivery state.
func (r *OrderRepository) Save(ctx context.Context, o *sale.Order) error {
	orderPO := po.FromOrderDomain(o)
	result := r.getDB(ctx).
		Model(&po.OrderPO{}).
		Where("id = ?", orderPO.ID).
		Updates(map[string]interface{}{
			"delivered":      orderPO.Delivered,
			"date_delivered": orderPO.DateDelivered,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sale.NewOrderNotFoundError()
	}
	return nil
}

func (r *OrderRepository) DeleteFromSale(ctx context.Context, saleID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.getDB(ctx).
		Where("sale_id = ? AND id IN ?", saleID, ids).
		Delete(&po.OrderPO{})
	return result.RowsAffected, result.Error
}

func (r *OrderRepository) AssignStaff(ctx context.Context, staffID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.getDB(ctx).
		Model(&po.OrderPO{}).
		Where("id IN ?", ids).
		Update("staff_id", staffID)
	return result.RowsAffected, result.Error
}

func (r *OrderRepository) ClearStaff(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.getDB(ctx).
		Model(&po.OrderPO{}).
		Where("id IN ?", ids).
		Update("staff_id", gorm.Expr("NULL"))
	return result.RowsAffected, result.Error
}

var _ sale.OrderRepository = (*OrderRepository)(nil)
