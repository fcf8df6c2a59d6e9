package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/neurobots-backend/internal/app"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.LogMode)
		if err != nil {
			return err
		}
		defer log.Sync()

		svc, err := app.OpenDatabase(log, cfg)
		if err != nil {
			return err
		}
		log.Info("migrations applied", "driver", cfg.DB.Driver)
		return svc.Close()
	},
}
