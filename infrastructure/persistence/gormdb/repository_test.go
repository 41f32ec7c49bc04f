package gormdb_test

import (
	"context"
	"testing"
	"time"

	"backoffice/domain/identity"
	"backoffice/domain/sale"
	"backoffice/infrastructure/persistence/gormdb"
	"backoffice/infrastructure/persistence/gormdb/po"
	"backoffice/infrastructure/persistence/gormdb/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var orderedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func createSale(t *testing.T, db *gorm.DB, customerID int64, location string, items ...sale.Item) *sale.Sale {
	t.Helper()
	s, err := sale.NewSale(customerID, location, items, orderedAt)
	require.NoError(t, err)
	require.NoError(t, gormdb.NewSaleRepository(db).Create(context.Background(), s))
	return s
}

func TestSaleRepositoryCreateAndFind(t *testing.T) {
	db := testdb.OpenSeeded(t)
	repo := gormdb.NewSaleRepository(db)
	ctx := context.Background()

	s := createSale(t, db, testdb.CustomerAda, "Lagos",
		sale.Item{ProductID: testdb.ProductWidget, Quantity: 2},
		sale.Item{ProductID: testdb.ProductGadget, Quantity: 1},
	)
	require.NotZero(t, s.SaleID())
	for _, o := range s.Orders() {
		assert.NotZero(t, o.OrderID())
		assert.Equal(t, s.SaleID(), o.SaleID())
	}

	found, err := repo.FindByID(ctx, s.SaleID())
	require.NoError(t, err)
	assert.Equal(t, testdb.CustomerAda, found.CustomerID())
	assert.Equal(t, "Lagos", found.Location())
	assert.False(t, found.Paid())
	assert.True(t, orderedAt.Equal(found.DateOrdered()))

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, sale.ErrSaleNotFound)
}

func TestSaleRepositorySaveAndDelete(t *testing.T) {
	db := testdb.OpenSeeded(t)
	repo := gormdb.NewSaleRepository(db)
	ctx := context.Background()

	s := createSale(t, db, testdb.CustomerAda, "Lagos", sale.Item{ProductID: testdb.ProductWidget, Quantity: 1})

	paidAt := orderedAt.Add(time.Hour)
	require.True(t, s.MarkPaid(paidAt))
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindByID(ctx, s.SaleID())
	require.NoError(t, err)
	assert.True(t, found.Paid())
	require.NotNil(t, found.DatePaid())
	assert.True(t, paidAt.Equal(*found.DatePaid()))

	require.NoError(t, repo.Delete(ctx, s.SaleID()))
	_, err = repo.FindByID(ctx, s.SaleID())
	assert.ErrorIs(t, err, sale.ErrSaleNotFound)

	var orders int64
	require.NoError(t, db.Model(&po.OrderPO{}).Where("sale_id = ?", s.SaleID()).Count(&orders).Error)
	assert.Zero(t, orders)

	assert.ErrorIs(t, repo.Delete(ctx, s.SaleID()), sale.ErrSaleNotFound)
}

func TestOrderRepository(t *testing.T) {
	db := testdb.OpenSeeded(t)
	repo := gormdb.NewOrderRepository(db)
	ctx := context.Background()

	first := createSale(t, db, testdb.CustomerAda, "Lagos",
		sale.Item{ProductID: testdb.ProductWidget, Quantity: 1},
		sale.Item{ProductID: testdb.ProductGadget, Quantity: 4},
	)
	other := createSale(t, db, testdb.CustomerGrace, "Abuja", sale.Item{ProductID: testdb.ProductWidget, Quantity: 1})
	ids := sale.OrderIDs(first.Orders())
	foreign := other.Orders()[0].OrderID()

	t.Run("find by ids skips unknown", func(t *testing.T) {
		orders, err := repo.FindByIDs(ctx, append(ids, 9999))
		require.NoError(t, err)
		assert.Equal(t, ids, sale.OrderIDs(orders))
	})

	t.Run("find missing order", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, sale.ErrOrderNotFound)
	})

	t.Run("assign and clear staff", func(t *testing.T) {
		n, err := repo.AssignStaff(ctx, testdb.StaffSam, ids)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		o, err := repo.FindByID(ctx, ids[0])
		require.NoError(t, err)
		require.NotNil(t, o.StaffID())
		assert.Equal(t, testdb.StaffSam, *o.StaffID())

		n, err = repo.ClearStaff(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		o, err = repo.FindByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Nil(t, o.StaffID())
	})

	t.Run("save delivery state", func(t *testing.T) {
		_, err := repo.AssignStaff(ctx, testdb.StaffKim, ids[:1])
		require.NoError(t, err)
		o, err := repo.FindByID(ctx, ids[0])
		require.NoError(t, err)

		deliveredAt := orderedAt.Add(2 * time.Hour)
		require.NoError(t, o.Deliver(identity.Staff(10, testdb.StaffKim), deliveredAt))
		require.NoError(t, repo.Save(ctx, o))

		o, err = repo.FindByID(ctx, ids[0])
		require.NoError(t, err)
		assert.True(t, o.Delivered())
		require.NotNil(t, o.DateDelivered())
		assert.True(t, deliveredAt.Equal(*o.DateDelivered()))
	})

	t.Run("delete only orders of the sale", func(t *testing.T) {
		n, err := repo.DeleteFromSale(ctx, first.SaleID(), []int64{ids[1], foreign})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repo.FindByID(ctx, foreign)
		assert.NoError(t, err)
		_, err = repo.FindByID(ctx, ids[1])
		assert.ErrorIs(t, err, sale.ErrOrderNotFound)
	})

	t.Run("insert batch", func(t *testing.T) {
		orders, err := sale.NewOrders(first.SaleID(), []sale.Item{{ProductID: testdb.ProductGadget, Quantity: 3}})
		require.NoError(t, err)
		require.NoError(t, repo.InsertBatch(ctx, orders))
		assert.NotZero(t, orders[0].OrderID())
	})
}

func TestCatalogRepository(t *testing.T) {
	db := testdb.OpenSeeded(t)
	repo := gormdb.NewCatalogRepository(db)
	ctx := context.Background()

	found, err := repo.ExistingProductIDs(ctx, []int64{testdb.ProductWidget, 77, testdb.ProductGadget})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{testdb.ProductWidget, testdb.ProductGadget}, found)

	ok, err := repo.CustomerExists(ctx, testdb.CustomerGrace)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CustomerExists(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.StaffExists(ctx, testdb.StaffKim)
	require.NoError(t, err)
	assert.True(t, ok)
}
