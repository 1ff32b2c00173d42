package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "feedesk/docs"
	"feedesk/internal/config"
	"feedesk/internal/events"
	"feedesk/internal/handler"
	"feedesk/internal/middleware"
	"feedesk/internal/platform"
	"feedesk/internal/repository"
	"feedesk/internal/service"
	"feedesk/pkg/logger"
)

// @title Fee Desk API
// @version 1.0
// @description Fee collection dashboard and payment entry backend for the school platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.App.LogLevel)
	logger.GetLogger().Info("Starting Fee Desk Service")

	// Connect to database
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := repository.RunMigrations(db); err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to run migrations")
	}
	logger.GetLogger().Info("Database connection established")

	// Event bus, optionally mirrored to RabbitMQ
	bus := events.NewMemoryBus()
	if cfg.AMQP.URL != "" {
		forwarder, err := events.NewAMQPForwarder(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.GetLogger().WithError(err).Warn("AMQP forwarding disabled")
		} else {
			defer forwarder.Close()
			forwarder.Attach(bus, events.TopicPaymentProcessed)
		}
	}

	// Initialize platform client and repositories
	api := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.ServiceToken, cfg.Platform.Timeout, bus)
	submissionRepo := repository.NewSubmissionRepository(db)

	// Initialize services
	feeService := service.NewFeeService(api, bus, cfg.App.MonthlyConcurrency)
	draftService := service.NewDraftService(api, feeService, submissionRepo, bus)

	// Initialize handlers
	feeHandler := handler.NewFeeHandler(feeService)
	draftHandler := handler.NewDraftHandler(draftService)

	// Setup router
	router := setupRouter(bus, feeHandler, draftHandler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.GetLogger().WithField("address", addr).Info("Server starting")

	if err := router.Run(addr); err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to start server")
	}
}

func connectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}

func setupRouter(bus events.Bus, feeHandler *handler.FeeHandler, draftHandler *handler.DraftHandler) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handler.RegisterRoutes(router.Group("/api/v1", middleware.Session(bus)), feeHandler, draftHandler)

	return router
}
