package gormdb

import (
	"context"
	"fmt"

	"backoffice/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// Models lists every table owned or read by the back office.
func Models() []interface{} {
	return []interface{}{
		&po.CustomerPO{},
		&po.StaffPO{},
		&po.BrandPO{},
		&po.InventoryPO{},
		&po.ProductPO{},
		&po.SalePO{},
		&po.OrderPO{},
		&po.OutboxEventPO{},
	}
}

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
