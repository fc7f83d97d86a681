package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/finbook/services/ledger/projections"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild all projections from the event log",
	Long: `Drops every projection table and replays the full event log in append
order. Run this offline: rebuild must not overlap with live appends.`,
	Run: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) {
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	engine, err := projections.NewEngine()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize projection engine")
	}

	if err := engine.Rebuild(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Rebuild failed")
	}
}
