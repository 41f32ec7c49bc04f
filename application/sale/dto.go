package sale

import "time"

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// CreateSaleRequest is the body of POST /sales.
type CreateSaleRequest struct {
	CustomerID int64              `json:"customer_id" binding:"required"`
	Location   string             `json:"location" binding:"required,max=255"`
	Orders     []OrderItemRequest `json:"orders" binding:"required,min=1,dive"`
}

// ListSalesQuery carries the listing query string. Dates accept RFC 3339
// or a plain YYYY-MM-DD day; a plain day used as a stop bound covers the
// whole day.
type ListSalesQuery struct {
	Page             int    `form:"page"`
	PerPage          int    `form:"per_page"`
	Search           string `form:"search" binding:"max=255"`
	Paid             *bool  `form:"paid"`
	DateOrderedStart string `form:"date_ordered_start"`
	DateOrderedStop  string `form:"date_ordered_stop"`
	DatePaidStart    string `form:"date_paid_start"`
	DatePaidStop     string `form:"date_paid_stop"`
}

// SaleResponse is one row of the sale listing.
type SaleResponse struct {
	ID          int64      `json:"id"`
	Paid        bool       `json:"paid"`
	DateOrdered time.Time  `json:"date_ordered"`
	DatePaid    *time.Time `json:"date_paid"`
	CustomerID  int64      `json:"customer_id"`
	Customer    string     `json:"customer"`
	Location    string     `json:"location"`
	OrdersCount int64      `json:"orders_count"`
	TotalAmount string     `json:"total_amount"`
}

// OrderResponse is one order inside a sale detail.
type OrderResponse struct {
	ID            int64      `json:"id"`
	SaleID        int64      `json:"sale_id"`
	ProductID     int64      `json:"product_id"`
	Product       string     `json:"product"`
	Price         string     `json:"price"`
	Quantity      int        `json:"quantity"`
	Total         string     `json:"total"`
	Delivered     bool       `json:"delivered"`
	DateDelivered *time.Time `json:"date_delivered"`
	StaffID       *int64     `json:"staff_id"`
	Staff         *string    `json:"staff"`
}

// SaleDetailResponse is a sale with all its orders.
type SaleDetailResponse struct {
	SaleResponse
	Orders []OrderResponse `json:"orders"`
}

// SaleListResponse is one page of the listing.
type SaleListResponse struct {
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Count   int64          `json:"count"`
	Results []SaleResponse `json:"results"`
}

// OrderStateResponse is returned after a delivery.
type OrderStateResponse struct {
	ID            int64      `json:"id"`
	SaleID        int64      `json:"sale_id"`
	ProductID     int64      `json:"product_id"`
	Quantity      int        `json:"quantity"`
	StaffID       *int64     `json:"staff_id"`
	Delivered     bool       `json:"delivered"`
	DateDelivered *time.Time `json:"date_delivered"`
}

// StaffOrdersResponse is returned by staff assignment and removal.
type StaffOrdersResponse struct {
	StaffID  int64   `json:"staff_id"`
	OrderIDs []int64 `json:"order_ids"`
	Affected int64   `json:"affected"`
}
