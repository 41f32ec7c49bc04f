package po

import "github.com/shopspring/decimal"

// Reference tables. The back-office reads them for existence checks and
// for the names and prices shown in sale views; it never writes them.

type CustomerPO struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;not null"`
}

func (CustomerPO) TableName() string {
	return "customers"
}

type StaffPO struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;not null"`
}

func (StaffPO) TableName() string {
	return "staffs"
}

type BrandPO struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;not null"`
}

func (BrandPO) TableName() string {
	return "brands"
}

type InventoryPO struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"size:255;not null"`
	Location string `gorm:"size:255"`
}

func (InventoryPO) TableName() string {
	return "inventories"
}

type ProductPO struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:255;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null;default:0"`
	BrandID     *int64          `gorm:"index"`
	InventoryID *int64          `gorm:"index"`
}

func (ProductPO) TableName() string {
	return "products"
}
