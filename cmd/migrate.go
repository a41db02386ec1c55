package cmd

import (
	"fmt"

	"placeprep_backend/pkg/database"
	"placeprep_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer logger.Log.Sync()

		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		tables, err := database.TableNames(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "数据库迁移完成，共 %d 张表\n", len(tables))
		return nil
	},
}
