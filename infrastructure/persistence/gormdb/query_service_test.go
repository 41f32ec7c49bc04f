package gormdb_test

import (
	"context"
	"testing"
	"time"

	"backoffice/domain/sale"
	"backoffice/infrastructure/persistence/gormdb"
	"backoffice/infrastructure/persistence/gormdb/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestSaleQueryServiceDetail(t *testing.T) {
	db := testdb.OpenSeeded(t)
	qs := gormdb.NewSaleQueryService(db)
	orders := gormdb.NewOrderRepository(db)
	ctx := context.Background()

	s := createSale(t, db, testdb.CustomerAda, "Lagos",
		sale.Item{ProductID: testdb.ProductWidget, Quantity: 2},
		sale.Item{ProductID: testdb.ProductGadget, Quantity: 4},
	)
	_, err := orders.AssignStaff(ctx, testdb.StaffSam, []int64{s.Orders()[0].OrderID()})
	require.NoError(t, err)

	detail, err := qs.GetSaleDetail(ctx, s.SaleID())
	require.NoError(t, err)

	assert.Equal(t, s.SaleID(), detail.ID)
	assert.Equal(t, "Ada Lovelace", detail.Customer)
	assert.Equal(t, int64(2), detail.OrdersCount)
	assertDecimal(t, "30", detail.TotalAmount)

	require.Len(t, detail.Orders, 2)
	widget := detail.Orders[0]
	assert.Equal(t, "Widget", widget.Product)
	assertDecimal(t, "10.50", widget.Price)
	assertDecimal(t, "21", widget.Total)
	require.NotNil(t, widget.Staff)
	assert.Equal(t, "Sam Porter", *widget.Staff)

	gadget := detail.Orders[1]
	assertDecimal(t, "9", gadget.Total)
	assert.Nil(t, gadget.StaffID)
	assert.Nil(t, gadget.Staff)
}

func TestSaleQueryServiceDetailWithoutOrders(t *testing.T) {
	db := testdb.OpenSeeded(t)
	qs := gormdb.NewSaleQueryService(db)
	ctx := context.Background()

	s := createSale(t, db, testdb.CustomerGrace, "Abuja", sale.Item{ProductID: testdb.ProductWidget, Quantity: 1})
	_, err := gormdb.NewOrderRepository(db).DeleteFromSale(ctx, s.SaleID(), sale.OrderIDs(s.Orders()))
	require.NoError(t, err)

	detail, err := qs.GetSaleDetail(ctx, s.SaleID())
	require.NoError(t, err)
	assert.Empty(t, detail.Orders)
	assert.Zero(t, detail.OrdersCount)
	assertDecimal(t, "0", detail.TotalAmount)

	_, err = qs.GetSaleDetail(ctx, 9999)
	assert.ErrorIs(t, err, sale.ErrSaleNotFound)
}

func TestSaleQueryServiceList(t *testing.T) {
	db := testdb.OpenSeeded(t)
	qs := gormdb.NewSaleQueryService(db)
	repo := gormdb.NewSaleRepository(db)
	ctx := context.Background()

	lagos := createSale(t, db, testdb.CustomerAda, "Lagos Island", sale.Item{ProductID: testdb.ProductWidget, Quantity: 1})
	abuja := createSale(t, db, testdb.CustomerGrace, "Abuja", sale.Item{ProductID: testdb.ProductGadget, Quantity: 2})
	third := createSale(t, db, testdb.CustomerGrace, "Kano", sale.Item{ProductID: testdb.ProductGadget, Quantity: 1})

	paidAt := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	require.True(t, abuja.MarkPaid(paidAt))
	require.NoError(t, repo.Save(ctx, abuja))

	yes, no := true, false
	dayBefore := paidAt.Add(-24 * time.Hour)
	dayAfter := paidAt.Add(24 * time.Hour)

	testCases := []struct {
		name    string
		filter  sale.ListFilter
		page    sale.Page
		wantIDs []int64
		count   int64
	}{
		{"all newest first", sale.ListFilter{}, sale.NewPage(1, 10), []int64{third.SaleID(), abuja.SaleID(), lagos.SaleID()}, 3},
		{"search customer case-insensitive", sale.ListFilter{Search: "ADA"}, sale.NewPage(1, 10), []int64{lagos.SaleID()}, 1},
		{"search location", sale.ListFilter{Search: "kan"}, sale.NewPage(1, 10), []int64{third.SaleID()}, 1},
		{"percent is literal", sale.ListFilter{Search: "%"}, sale.NewPage(1, 10), []int64{}, 0},
		{"underscore is literal", sale.ListFilter{Search: "_"}, sale.NewPage(1, 10), []int64{}, 0},
		{"underscore inside a term", sale.ListFilter{Search: "Lag_s"}, sale.NewPage(1, 10), []int64{}, 0},
		{"paid", sale.ListFilter{Paid: &yes}, sale.NewPage(1, 10), []int64{abuja.SaleID()}, 1},
		{"unpaid", sale.ListFilter{Paid: &no}, sale.NewPage(1, 10), []int64{third.SaleID(), lagos.SaleID()}, 2},
		{"date paid inclusive", sale.ListFilter{DatePaidStart: &paidAt, DatePaidStop: &paidAt}, sale.NewPage(1, 10), []int64{abuja.SaleID()}, 1},
		{"date paid outside", sale.ListFilter{DatePaidStart: &dayAfter}, sale.NewPage(1, 10), []int64{}, 0},
		{"date ordered range", sale.ListFilter{DateOrderedStart: &orderedAt, DateOrderedStop: &dayBefore}, sale.NewPage(1, 10), []int64{third.SaleID(), abuja.SaleID(), lagos.SaleID()}, 3},
		{"combined", sale.ListFilter{Search: "grace", Paid: &no}, sale.NewPage(1, 10), []int64{third.SaleID()}, 1},
		{"second page", sale.ListFilter{}, sale.NewPage(2, 2), []int64{lagos.SaleID()}, 3},
		{"page past the end", sale.ListFilter{}, sale.NewPage(5, 2), []int64{}, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := qs.ListSales(ctx, tc.filter.Specification(), tc.page)
			require.NoError(t, err)
			assert.Equal(t, tc.count, result.Count)

			ids := make([]int64, 0, len(result.Results))
			for _, v := range result.Results {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}

	t.Run("views carry aggregates", func(t *testing.T) {
		result, err := qs.ListSales(ctx, sale.ListFilter{Paid: &yes}.Specification(), sale.NewPage(1, 10))
		require.NoError(t, err)
		require.Len(t, result.Results, 1)
		v := result.Results[0]
		assert.Equal(t, "Grace Hopper", v.Customer)
		assert.Equal(t, int64(1), v.OrdersCount)
		assertDecimal(t, "4.5", v.TotalAmount)
		require.NotNil(t, v.DatePaid)
		assert.True(t, paidAt.Equal(*v.DatePaid))
	})
}
