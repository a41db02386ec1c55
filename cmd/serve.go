package cmd

import (
	"fmt"

	"placeprep_backend/internal/app"
	"placeprep_backend/pkg/database"
	"placeprep_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "启动前执行数据库迁移")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Log.Sync()

	application, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	// 根命令没有 --migrate 标志，取值失败时为 false
	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.Migrate(application.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return application.Run()
}
