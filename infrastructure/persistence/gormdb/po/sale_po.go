package po

import (
	"time"

	"backoffice/domain/sale"
)

// SalePO Sale persistence object
// Only ids are stored for relations, no GORM associations
type SalePO struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	CustomerID  int64      `gorm:"index;not null"`
	Location    string     `gorm:"size:255;not null"`
	Paid        bool       `gorm:"not null;default:false;index"`
	DateOrdered time.Time  `gorm:"not null;index"`
	DatePaid    *time.Time `gorm:"index"`
}

func (SalePO) TableName() string {
	return "sales"
}

func FromSaleDomain(s *sale.Sale) *SalePO {
	return &SalePO{
		ID:          s.SaleID(),
		CustomerID:  s.CustomerID(),
		Location:    s.Location(),
		Paid:        s.Paid(),
		DateOrdered: s.DateOrdered().UTC(),
		DatePaid:    utcPtr(s.DatePaid()),
	}
}

func (po *SalePO) ToDomain() *sale.Sale {
	return sale.RebuildFromDTO(sale.ReconstructionDTO{
		ID:          po.ID,
		CustomerID:  po.CustomerID,
		Location:    po.Location,
		Paid:        po.Paid,
		DateOrdered: po.DateOrdered.UTC(),
		DatePaid:    utcPtr(po.DatePaid),
	})
}

// OrderPO Order persistence object
type OrderPO struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	SaleID        int64      `gorm:"index;not null"`
	ProductID     int64      `gorm:"index;not null"`
	Quantity      int        `gorm:"not null"`
	StaffID       *int64     `gorm:"index"`
	Delivered     bool       `gorm:"not null;default:false"`
	DateDelivered *time.Time
}

func (OrderPO) TableName() string {
	return "orders"
}

func FromOrderDomain(o *sale.Order) *OrderPO {
	return &OrderPO{
		ID:            o.OrderID(),
		SaleID:        o.SaleID(),
		ProductID:     o.ProductID(),
		Quantity:      o.Quantity(),
		StaffID:       o.StaffID(),
		Delivered:     o.Delivered(),
		DateDelivered: utcPtr(o.DateDelivered()),
	}
}

func (po *OrderPO) ToDomain() *sale.Order {
	return sale.RebuildOrderFromDTO(sale.OrderReconstructionDTO{
		ID:            po.ID,
		SaleID:        po.SaleID,
		ProductID:     po.ProductID,
		Quantity:      po.Quantity,
		StaffID:       po.StaffID,
		Delivered:     po.Delivered,
		DateDelivered: utcPtr(po.DateDelivered),
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
