package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/freedom-fire/ticketrouter/internal/config"
	"github.com/freedom-fire/ticketrouter/internal/driven"
	"github.com/freedom-fire/ticketrouter/internal/geocoder"
	"github.com/freedom-fire/ticketrouter/internal/limits"
	"github.com/freedom-fire/ticketrouter/internal/llm"
	"github.com/freedom-fire/ticketrouter/internal/storage"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Args:  cobra.NoArgs,
	Short: "Process all tickets that have not been analyzed yet",
	Long: `Selects every ticket without an analytics record and runs the full
assignment pipeline on each. One ticket's failure never aborts the batch.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("json", false, "print per-ticket results as JSON")
}

func runProcess(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	batch, store, err := buildBatchProcessor(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := batch.Execute(cmd.Context())
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("%s: ошибка — %s\n", r.TicketGUID, r.Error)
			continue
		}
		if r.AssignedManager == "" {
			fmt.Printf("%s: спам, без назначения\n", r.TicketGUID)
			continue
		}
		fmt.Printf("%s → %s (%s)\n", r.TicketGUID, r.AssignedManager, r.AssignedOffice)
	}
	return nil
}

// buildBatchProcessor собирает конвейер из конфигурации
func buildBatchProcessor(cmd *cobra.Command, cfg *config.Config) (*driven.BatchProcessor, *storage.Store, error) {
	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	limiter := limits.NewAdapterLimiter(nil)
	classifier := llm.NewClassifier(cmd.Context(), cfg.Classifier.ApiKey, cfg.Classifier.Model, cfg.App.DataDir, limiter)
	geo := geocoder.NewGeocoder(cfg.Geocoder.GoogleApiKey, cfg.Geocoder.UserAgent, limiter)

	processor := driven.NewTicketProcessor(classifier, geo, store)
	log.Printf("🚀 Конвейер готов: модель=%s, воркеров=%d", cfg.Classifier.Model, cfg.App.Workers)

	return driven.NewBatchProcessor(processor, store, cfg.App.Workers), store, nil
}
