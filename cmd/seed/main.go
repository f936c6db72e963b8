package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts db.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the match store with demo members, guardians and swipes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger.InitFromConfig(cfg)

			database, err := db.NewDB(cfg)
			if err != nil {
				return fmt.Errorf("init db: %w", err)
			}
			if err := db.SeedDemoData(database, opts); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			logger.Info("seeding completed", "users", opts.Users, "reset", opts.Reset, "driver", cfg.DB.Driver)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", 20, "number of demo users to create")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed for reproducible data (0 uses the clock)")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "delete existing data before seeding")

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete all users, swipes, matches and related rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger.InitFromConfig(cfg)

			database, err := db.NewDB(cfg)
			if err != nil {
				return fmt.Errorf("init db: %w", err)
			}
			if err := db.ResetData(database); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			logger.Info("reset completed")
			return nil
		},
	})
	return cmd
}
