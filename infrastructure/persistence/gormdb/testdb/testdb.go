// Package testdb opens migrated in-memory SQLite stores for tests.
package testdb

import (
	"context"
	"testing"

	"backoffice/infrastructure/persistence/gormdb"
	"backoffice/infrastructure/persistence/gormdb/po"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fixture ids seeded by Seed.
const (
	CustomerAda   int64 = 1
	CustomerGrace int64 = 2
	StaffSam      int64 = 1
	StaffKim      int64 = 2
	ProductWidget int64 = 1
	ProductGadget int64 = 2
)

// Open returns an empty migrated store that is closed with the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &gormdb.Config{
		Type:       gormdb.TypeSQLite,
		SQLitePath: ":memory:",
		LogLevel:   "silent",
	}
	db, err := cfg.Connect()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = gormdb.Close(db) })

	if err := gormdb.AutoMigrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// OpenSeeded is Open followed by Seed.
func OpenSeeded(t testing.TB) *gorm.DB {
	t.Helper()
	db := Open(t)
	Seed(t, db)
	return db
}

// Seed inserts two customers, two staff and two products.
// Widget costs 10.50 and Gadget 2.25.
func Seed(t testing.TB, db *gorm.DB) {
	t.Helper()

	rows := []interface{}{
		&[]po.CustomerPO{{ID: CustomerAda, Name: "Ada Lovelace"}, {ID: CustomerGrace, Name: "Grace Hopper"}},
		&[]po.StaffPO{{ID: StaffSam, Name: "Sam Porter"}, {ID: StaffKim, Name: "Kim Lee"}},
		&po.BrandPO{ID: 1, Name: "Acme"},
		&po.InventoryPO{ID: 1, Name: "Main", Location: "Lagos"},
		&[]po.ProductPO{
			{ID: ProductWidget, Name: "Widget", Price: decimal.RequireFromString("10.50"), Quantity: 100},
			{ID: ProductGadget, Name: "Gadget", Price: decimal.RequireFromString("2.25"), Quantity: 50},
		},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}
