package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freedom-fire/ticketrouter/internal/config"
	"github.com/freedom-fire/ticketrouter/internal/ingest"
	"github.com/freedom-fire/ticketrouter/internal/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Args:  cobra.NoArgs,
	Short: "Load offices, managers and tickets from CSV exports",
	Long: `Reads business_units.csv, managers.csv and tickets.csv from the data
directory and fills the database. Re-running is safe: offices are matched
by name, tickets by GUID.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().String("data-dir", "", "override the data directory from config")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = cfg.App.DataDir
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := ingest.Seed(cmd.Context(), store, dataDir); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	return nil
}

var geocodeOfficesCmd = &cobra.Command{
	Use:   "geocode-offices",
	Args:  cobra.NoArgs,
	Short: "Resolve coordinates for offices that lack them",
	Long: `Runs every office without coordinates through the geocoder and stores
the result. Offices without coordinates never win nearest-office selection,
so run this after seeding.`,
	RunE: runGeocodeOffices,
}

func runGeocodeOffices(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	batch, store, err := buildBatchProcessor(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	resolved, err := batch.GeocodeOffices(cmd.Context())
	if err != nil {
		return fmt.Errorf("office geocoding failed: %w", err)
	}

	fmt.Printf("Геокодировано отделений: %d\n", resolved)
	return nil
}
