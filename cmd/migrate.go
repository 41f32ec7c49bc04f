package cmd

import (
	"fmt"

	"backoffice/infrastructure/persistence/gormdb"
	"backoffice/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}
			cfg.Database.AutoMigrate = false

			app, err := NewBuilder(cfg).WithoutHTTP().WithRelay(false).Build()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := gormdb.AutoMigrate(cmd.Context(), app.DB()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("Schema migrated", zap.String("database", cfg.Database.Type), zap.Int("tables", len(gormdb.Models())))
			return logger.Sync()
		},
	}
}
