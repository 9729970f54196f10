package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	authhandler "github.com/isabelayared/pharmastock-system/internal/auth/handler"
	"github.com/isabelayared/pharmastock-system/internal/auth/jwt"
	"github.com/isabelayared/pharmastock-system/internal/inventory/catalog"
	"github.com/isabelayared/pharmastock-system/internal/inventory/events"
	"github.com/isabelayared/pharmastock-system/internal/inventory/handler"
	"github.com/isabelayared/pharmastock-system/internal/inventory/repository"
	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
	"github.com/isabelayared/pharmastock-system/pkg/cache"
	"github.com/isabelayared/pharmastock-system/pkg/config"
	"github.com/isabelayared/pharmastock-system/pkg/database"
	"github.com/isabelayared/pharmastock-system/pkg/httputil"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
	"github.com/isabelayared/pharmastock-system/pkg/messaging"
	"github.com/isabelayared/pharmastock-system/pkg/metrics"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("pharmastock")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("pharmastock", cfg.Server.Environment)
	log.Info().Msg("starting PharmaStock")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewInventoryEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Catalog resolver, wrapped in the Redis cache when it is reachable.
	// The built-in table answers everything either way.
	var resolver catalog.Resolver = catalog.NewStaticResolver()
	redisClient, err := cache.New(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, catalog lookups are uncached")
	} else {
		defer redisClient.Close()
		resolver = catalog.NewCachedResolver(resolver, redisClient, cfg.Redis.TTL, log)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	// Initialize service
	inventoryService := service.NewInventoryService(productRepo, batchRepo, resolver, publisher, log)

	// Metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// Token manager and handlers
	tokenManager := jwt.NewManager(&cfg.JWT)
	authHandler := authhandler.NewAuthHandler(tokenManager, &cfg.Auth, log)
	productHandler := handler.NewProductHandler(inventoryService, log)
	saleHandler := handler.NewSaleHandler(inventoryService, m, log)
	alertHandler := handler.NewAlertHandler(inventoryService, cfg.Alerts.HorizonDays, log)
	dashboardHandler := handler.NewDashboardHandler(inventoryService, log)
	catalogHandler := handler.NewCatalogHandler(resolver, log)

	// Background expiry scanner
	scanner := service.NewExpiryScanner(inventoryService, publisher, cfg.Alerts.ScanInterval, cfg.Alerts.HorizonDays, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanner.Start(ctx)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(m.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "pharmastock",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(authhandler.RequireAuth(tokenManager))

			productHandler.RegisterRoutes(r)
			saleHandler.RegisterRoutes(r)
			alertHandler.RegisterRoutes(r)
			dashboardHandler.RegisterRoutes(r)
			catalogHandler.RegisterRoutes(r)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the scanner before the server drains
	cancel()
	scanner.Stop()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
