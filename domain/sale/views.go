package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleView is the denormalised sale row used by listing and detail.
type SaleView struct {
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

// OrderView is one order with product, price and staff names resolved.
type OrderView struct {
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

// SaleDetail is a sale with every order. Orders may be empty.
type SaleDetail struct {
	SaleView
	Orders []OrderView
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number to >= 1 and size to [1, MaxPageSize], defaulting to DefaultPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// SalePage is one page of sales plus the total post-filter count.
type SalePage struct {
	Page    Page
	Count   int64
	Results []SaleView
}
