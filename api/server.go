package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/finbook/services/ledger/config"
	"example.com/finbook/services/ledger/eventstore"
	"example.com/finbook/services/ledger/handlers"
	"example.com/finbook/services/ledger/repositories"
)

// Server is the HTTP server for the API
type Server struct {
	cfg        config.Config
	router     *gin.Engine
	httpServer *http.Server

	store eventstore.Store

	transactionHandler *handlers.TransactionHandler
	budgetHandler      *handlers.BudgetHandler
	lifeEventHandler   *handlers.LifeEventHandler

	transactionRepo *repositories.TransactionRepository
	budgetRepo      *repositories.BudgetRepository
	lifeEventRepo   *repositories.LifeEventRepository
}

// NewServer creates a new API server
func NewServer(
	cfg config.Config,
	store eventstore.Store,
	transactionHandler *handlers.TransactionHandler,
	budgetHandler *handlers.BudgetHandler,
	lifeEventHandler *handlers.LifeEventHandler,
	transactionRepo *repositories.TransactionRepository,
	budgetRepo *repositories.BudgetRepository,
	lifeEventRepo *repositories.LifeEventRepository,
) *Server {
	server := &Server{
		cfg:                cfg,
		router:             gin.New(),
		store:              store,
		transactionHandler: transactionHandler,
		budgetHandler:      budgetHandler,
		lifeEventHandler:   lifeEventHandler,
		transactionRepo:    transactionRepo,
		budgetRepo:         budgetRepo,
		lifeEventRepo:      lifeEventRepo,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware adds middleware to the router
func (s *Server) setupMiddleware() {
	// Add request ID middleware
	s.router.Use(RequestIDMiddleware())

	// Add CORS middleware
	if s.cfg.CorsEnabled {
		s.router.Use(CORSMiddleware())
	}

	// Add recovery middleware
	s.router.Use(gin.Recovery())

	// Add logging middleware
	s.router.Use(LoggingMiddleware())
}

// setupRoutes defines the API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// API v1 group
	v1 := s.router.Group("/api/v1")

	// Transaction routes
	transactionRoutes := v1.Group("/transactions")
	{
		transactionRoutes.POST("", s.createTransaction)
		transactionRoutes.GET("", s.listTransactions)
		transactionRoutes.GET("/summary", s.getMonthlySummary)
		transactionRoutes.GET("/recent", s.getRecentTransactions)
		transactionRoutes.GET("/savings-rate", s.getSavingsRate)
		transactionRoutes.GET("/trends/:category", s.getSpendingTrend)
		transactionRoutes.GET("/:id", s.getTransaction)
		transactionRoutes.PUT("/:id", s.updateTransaction)
		transactionRoutes.DELETE("/:id", s.deleteTransaction)
	}

	// Budget routes
	budgetRoutes := v1.Group("/budgets")
	{
		budgetRoutes.POST("", s.createBudget)
		budgetRoutes.GET("", s.listBudgets)
		budgetRoutes.GET("/alerts", s.getBudgetAlerts)
		budgetRoutes.PUT("/:id", s.updateBudget)
		budgetRoutes.DELETE("/:id", s.deleteBudget)
	}

	// Life event routes
	lifeEventRoutes := v1.Group("/life-events")
	{
		lifeEventRoutes.POST("", s.addLifeEvent)
		lifeEventRoutes.GET("", s.listLifeEvents)
		lifeEventRoutes.GET("/profile", s.getProfile)
		lifeEventRoutes.PUT("/:id", s.updateLifeEvent)
		lifeEventRoutes.DELETE("/:id", s.deleteLifeEvent)
	}

	// Audit routes
	eventRoutes := v1.Group("/events")
	{
		eventRoutes.GET("", s.listEvents)
		eventRoutes.GET("/:aggregateId", s.getAggregateEvents)
	}
}

// Router exposes the configured gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.HTTPServerAddress,
		Handler:      s.router,
		ReadTimeout:  s.cfg.HTTPServerTimeout,
		WriteTimeout: s.cfg.HTTPServerTimeout,
	}

	log.Info().Msgf("HTTP server starting on %s", s.cfg.HTTPServerAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
