package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/finbook/services/ledger/api"
	"example.com/finbook/services/ledger/eventstore"
	"example.com/finbook/services/ledger/handlers"
	"example.com/finbook/services/ledger/projections"
	"example.com/finbook/services/ledger/repositories"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Run:   runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) {
	log.Info().Msg("Starting server")

	// Connect to database
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	// Initialize projection engine
	engine, err := projections.NewEngine()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize projection engine")
	}

	// Initialize event store
	store := eventstore.NewGormStore(db, engine)

	// Initialize read-side repositories
	transactionRepo := repositories.NewTransactionRepository(db)
	budgetRepo := repositories.NewBudgetRepository(db)
	lifeEventRepo := repositories.NewLifeEventRepository(db)

	// Initialize command handlers
	transactionHandler := handlers.NewTransactionHandler(store, transactionRepo)
	budgetHandler := handlers.NewBudgetHandler(store, budgetRepo)
	lifeEventHandler := handlers.NewLifeEventHandler(store, lifeEventRepo)

	// Initialize server
	server := api.NewServer(
		cfg,
		store,
		transactionHandler,
		budgetHandler,
		lifeEventHandler,
		transactionRepo,
		budgetRepo,
		lifeEventRepo,
	)

	// Start HTTP server
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
