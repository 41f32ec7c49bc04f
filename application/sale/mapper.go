package sale

import (
	"strings"
	"time"

	"backoffice/domain/sale"
	"backoffice/domain/shared"
)

const moneyPlaces = 2

func toItems(items []OrderItemRequest) []sale.Item {
	out := make([]sale.Item, len(items))
	for i, item := range items {
		out[i] = sale.Item{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

func toSaleResponse(v sale.SaleView) SaleResponse {
	return SaleResponse{
		ID:          v.ID,
		Paid:        v.Paid,
		DateOrdered: v.DateOrdered,
		DatePaid:    v.DatePaid,
		CustomerID:  v.CustomerID,
		Customer:    v.Customer,
		Location:    v.Location,
		OrdersCount: v.OrdersCount,
		TotalAmount: v.TotalAmount.StringFixed(moneyPlaces),
	}
}

func toSaleDetailResponse(d *sale.SaleDetail) *SaleDetailResponse {
	orders := make([]OrderResponse, len(d.Orders))
	for i, o := range d.Orders {
		orders[i] = OrderResponse{
			ID:            o.ID,
			SaleID:        o.SaleID,
			ProductID:     o.ProductID,
			Product:       o.Product,
			Price:         o.Price.StringFixed(moneyPlaces),
			Quantity:      o.Quantity,
			Total:         o.Total.StringFixed(moneyPlaces),
			Delivered:     o.Delivered,
			DateDelivered: o.DateDelivered,
			StaffID:       o.StaffID,
			Staff:         o.Staff,
		}
	}
	return &SaleDetailResponse{SaleResponse: toSaleResponse(d.SaleView), Orders: orders}
}

func toSaleListResponse(p *sale.SalePage) *SaleListResponse {
	results := make([]SaleResponse, len(p.Results))
	for i, v := range p.Results {
		results[i] = toSaleResponse(v)
	}
	return &SaleListResponse{
		Page:    p.Page.Number,
		PerPage: p.Page.Size,
		Count:   p.Count,
		Results: results,
	}
}

func toOrderStateResponse(o *sale.Order) *OrderStateResponse {
	return &OrderStateResponse{
		ID:            o.OrderID(),
		SaleID:        o.SaleID(),
		ProductID:     o.ProductID(),
		Quantity:      o.Quantity(),
		StaffID:       o.StaffID(),
		Delivered:     o.Delivered(),
		DateDelivered: o.DateDelivered(),
	}
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseBound parses one date bound. A plain day used as an upper bound is
// widened to the last instant of that day.
func parseBound(field, value string, upper bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if upper && layout == "2006-01-02" {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		t = t.UTC()
		return &t, nil
	}
	return nil, shared.NewValidationError("sale", field, field+" must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

// Filter validates the query and converts it to the domain filter.
func (q ListSalesQuery) Filter() (sale.ListFilter, error) {
	filter := sale.ListFilter{Search: strings.TrimSpace(q.Search), Paid: q.Paid}

	bounds := []struct {
		field string
		value string
		upper bool
		dst   **time.Time
	}{
		{"date_ordered_start", q.DateOrderedStart, false, &filter.DateOrderedStart},
		{"date_ordered_stop", q.DateOrderedStop, true, &filter.DateOrderedStop},
		{"date_paid_start", q.DatePaidStart, false, &filter.DatePaidStart},
		{"date_paid_stop", q.DatePaidStop, true, &filter.DatePaidStop},
	}
	for _, b := range bounds {
		t, err := parseBound(b.field, b.value, b.upper)
		if err != nil {
			return sale.ListFilter{}, err
		}
		*b.dst = t
	}

	if after(filter.DateOrderedStart, filter.DateOrderedStop) {
		return sale.ListFilter{}, shared.NewValidationError("sale", "date_ordered_start", "date_ordered_start must not be after date_ordered_stop")
	}
	if after(filter.DatePaidStart, filter.DatePaidStop) {
		return sale.ListFilter{}, shared.NewValidationError("sale", "date_paid_start", "date_paid_start must not be after date_paid_stop")
	}
	return filter, nil
}

func after(start, stop *time.Time) bool {
	return start != nil && stop != nil && start.After(*stop)
}
