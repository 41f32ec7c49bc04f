package gormdb

import (
	"context"
	"time"

	"backoffice/domain/sale"
	"backoffice/domain/shared"
	"backoffice/infrastructure/persistence"
	"backoffice/infrastructure/persistence/specification"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const saleViewColumns = "s.id, s.paid, s.date_ordered, s.date_paid, s.customer_id, c.name AS customer, s.location, " +
	"COUNT(o.id) AS orders_count, COALESCE(SUM(o.quantity * p.price), 0) AS total_amount"

const saleViewGroupBy = "s.id, s.paid, s.date_ordered, s.date_paid, s.customer_id, c.name, s.location"

const orderViewColumns = "o.id, o.sale_id, o.product_id, p.name AS product, p.price, o.quantity, " +
	"o.quantity * p.price AS total, o.delivered, o.date_delivered, o.staff_id, st.name AS staff"

type saleRow struct {
	ID          int64
	Paid        bool
	DateOrdered time.Time
	DatePaid    *time.Time
	CustomerID  int64
	Customer    string
	Location    string
	OrdersCount int64
	TotalAmount decimal.Decimal
}

func (r saleRow) toView() sale.SaleView {
	return sale.SaleView{
		ID:          r.ID,
		Paid:        r.Paid,
		DateOrdered: r.DateOrdered.UTC(),
		DatePaid:    utcPtr(r.DatePaid),
		CustomerID:  r.CustomerID,
		Customer:    r.Customer,
		Location:    r.Location,
		OrdersCount: r.OrdersCount,
		TotalAmount: r.TotalAmount,
	}
}

type orderRow struct {
	ID            int64
	SaleID        int64
	ProductID     int64
	Product       string
	Price         decimal.Decimal
	Quantity      int
	Total         decimal.Decimal
	Delivered     bool
	DateDelivered *time.Time
	StaffID       *int64
	Staff         *string
}

func (r orderRow) toView() sale.OrderView {
	return sale.OrderView{
		ID:            r.ID,
		SaleID:        r.SaleID,
		ProductID:     r.ProductID,
		Product:       r.Product,
		Price:         r.Price,
		Quantity:      r.Quantity,
		Total:         r.Total,
		Delivered:     r.Delivered,
		DateDelivered: utcPtr(r.DateDelivered),
		StaffID:       r.StaffID,
		Staff:         r.Staff,
	}
}

// utcPtr normalises scanned timestamps, drivers differ in the location they attach.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// SaleQueryService builds the denormalised sale views with explicit joins.
type SaleQueryService struct {
	db         *gorm.DB
	translator *specification.GormTranslator
}

func NewSaleQueryService(db *gorm.DB) *SaleQueryService {
	return &SaleQueryService{db: db, translator: specification.NewGormTranslator()}
}

func (q *SaleQueryService) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return q.db.WithContext(ctx)
}

func (q *SaleQueryService) saleBase(ctx context.Context) *gorm.DB {
	return q.getDB(ctx).
		Table("sales s").
		Joins("JOIN customers c ON c.id = s.customer_id")
}

func (q *SaleQueryService) saleViews(ctx context.Context) *gorm.DB {
	return q.saleBase(ctx).
		Select(saleViewColumns).
		Joins("LEFT JOIN orders o ON o.sale_id = s.id").
		Joins("LEFT JOIN products p ON p.id = o.product_id").
		Group(saleViewGroupBy)
}

func (q *SaleQueryService) GetSaleDetail(ctx context.Context, id int64) (*sale.SaleDetail, error) {
	var row saleRow
	result := q.saleViews(ctx).
		Where("s.id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, sale.NewSaleNotFoundError()
	}

	var orderRows []orderRow
	err := q.getDB(ctx).
		Table("orders o").
		Select(orderViewColumns).
		Joins("JOIN products p ON p.id = o.product_id").
		Joins("LEFT JOIN staffs st ON st.id = o.staff_id").
		Where("o.sale_id = ?", id).
		Order("o.id").
		Scan(&orderRows).Error
	if err != nil {
		return nil, err
	}

	detail := &sale.SaleDetail{
		SaleView: row.toView(),
		Orders:   make([]sale.OrderView, len(orderRows)),
	}
	for i := range orderRows {
		detail.Orders[i] = orderRows[i].toView()
	}
	return detail, nil
}

// ListSales applies spec as a WHERE clause to both the count and the page.
func (q *SaleQueryService) ListSales(ctx context.Context, spec shared.Specification[*sale.SaleView], page sale.Page) (*sale.SalePage, error) {
	filter, err := q.translator.Scope(spec)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := q.saleBase(ctx).Scopes(filter).Count(&count).Error; err != nil {
		return nil, err
	}

	result := &sale.SalePage{Page: page, Count: count, Results: []sale.SaleView{}}
	if count == 0 {
		return result, nil
	}

	var rows []saleRow
	err = q.saleViews(ctx).
		Scopes(filter).
		Order("s.id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result.Results = append(result.Results, row.toView())
	}
	return result, nil
}

var _ sale.QueryService = (*SaleQueryService)(nil)
