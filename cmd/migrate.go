package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hollmark/staffd/internal/config"
	"github.com/hollmark/staffd/internal/database"
	"github.com/hollmark/staffd/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			log := logger.New(cfg, nil)

			return database.Migrate(cmd.Context(), &log, cfg)
		},
	}
}
