package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "router",
	Short: "Off-hours ticket routing engine for Freedom Broker",
	Long: `Router classifies customer tickets with AI, resolves their geography and
deterministically assigns each one to a manager at a branch office,
balancing load with persistent round-robin counters.`,
}

func init() {
	// Subcommands live in their own files:
	// - processCmd in process.go
	// - seedCmd and geocodeOfficesCmd in seed.go
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(geocodeOfficesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
