package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
)

func migrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			db, err := postgres.NewDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			migrator := postgres.NewMigrator(db)
			if !statusOnly {
				n, err := migrator.Up(ctx)
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				log.Info().Int("applied", n).Msg("migrations applied")
			}

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			for _, st := range statuses {
				fmt.Fprintf(cmd.OutOrStdout(), "%03d  %-30s  applied=%t\n", st.Version, st.Name, st.Applied)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "only print migration status")
	return cmd
}
