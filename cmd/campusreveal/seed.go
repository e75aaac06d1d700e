package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"campus-reveal-backend/config"
	"campus-reveal-backend/internal/db"
	"campus-reveal-backend/internal/logger"
	"campus-reveal-backend/internal/seed"
	"campus-reveal-backend/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file|url]",
	Short: "Import colleges from a CSV or YAML file",
	Long: `Seed loads colleges into the database from a local file or an http(s)
URL. The format follows the extension (.csv, .yaml or .yml). CSV files need
a header row naming the name, city, state, nirfRank and rank columns.

Colleges already present with the same name, city and state are left
untouched, so a catalogue can be imported repeatedly.

Examples:
  # Import the file named by seed.source in the configuration
  campusreveal seed

  # Import a remote catalogue
  campusreveal seed https://example.com/colleges.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source string
	if len(args) == 1 {
		source = args[0]
	}

	res, err := seed.NewService(&cfg.Seed, store.NewGormStore(gormDB), log).Import(ctx, source)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "read %d, invalid %d, inserted %d, already present %d\n",
		res.Read, res.Invalid, res.Inserted, res.Skipped)
	return nil
}
