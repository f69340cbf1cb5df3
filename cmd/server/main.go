package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"similar-products-service/config"
	"similar-products-service/internal/api"
	"similar-products-service/internal/broker"
	"similar-products-service/internal/crm"
	"similar-products-service/internal/platform"
	"similar-products-service/internal/redisclient"
	"similar-products-service/internal/service"
	"similar-products-service/internal/similarity"
	"similar-products-service/internal/store"
	"similar-products-service/internal/util"
	"similar-products-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting similar products service")

	tp, err := util.InitTracer("similar-products-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// The audit log is optional; without DATABASE_URL the service still
	// enriches profiles, only the history endpoint comes back empty.
	var auditLog service.AuditLog
	if cfg.Database.URL != "" {
		auditStore, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer auditStore.Close()
		auditLog = auditStore
		log.Println("Database connected")
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEnrichment)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	var catalog platform.Catalog
	switch cfg.Ecommerce.Platform {
	case "prestashop":
		catalog = platform.NewPrestaShop(
			cfg.Ecommerce.URL,
			cfg.Ecommerce.APIKey,
			cfg.Ecommerce.Timeout,
			cfg.Ecommerce.CategoryLimit,
		)
	default:
		log.Fatalf("Unsupported e-commerce platform: %s", cfg.Ecommerce.Platform)
	}
	catalog = platform.NewCachedCatalog(catalog, redisClient, cfg.Redis.CategoryTTL)

	profiles := crm.NewKlaviyo(cfg.Klaviyo.APIKey, cfg.Klaviyo.Revision, cfg.Klaviyo.Timeout)

	ranker := similarity.NewRanker(similarity.Config{
		K1:                 cfg.Similarity.K1,
		B:                  cfg.Similarity.B,
		NameWeight:         cfg.Similarity.NameWeight,
		PriceWeight:        cfg.Similarity.PriceWeight,
		ManufacturerWeight: cfg.Similarity.ManufacturerWeight,
		Limit:              cfg.Similarity.Limit,
	})

	enrichmentService := service.NewEnrichmentService(
		catalog,
		profiles,
		ranker,
		auditLog,
		eventPublisher,
		cfg.Similarity.Limit,
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	catalogConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, cfg.Kafka.ConsumerGroup)
	catalogWorker := worker.NewCatalogWorker(catalogConsumer, redisClient)
	go func() {
		if err := catalogWorker.Start(workerCtx); err != nil {
			log.Printf("Catalog worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(enrichmentService, cfg.Webhook.Secret)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	catalogWorker.Stop()

	log.Println("Server exited")
}
