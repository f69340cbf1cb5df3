package worker

import (
	"context"
	"log"

	"similar-products-service/internal/broker"
	"similar-products-service/internal/models"
	"similar-products-service/internal/redisclient"
	"similar-products-service/internal/util"
)

// CatalogWorker consumes catalog update events and invalidates the
// Redis category-listing cache, so ranking never works from stale
// stock data longer than the cache TTL.
type CatalogWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *redisclient.Client
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer *broker.Consumer, cache *redisclient.Client) *CatalogWorker {
	w := &CatalogWorker{
		consumer: consumer,
		cache:    cache,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnProductUpdated(w.handleProductUpdated)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CatalogWorker) Start(ctx context.Context) error {
	log.Println("Starting catalog worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CatalogWorker) Stop() error {
	log.Println("Stopping catalog worker...")
	return w.consumer.Close()
}

func (w *CatalogWorker) handleProductUpdated(ctx context.Context, event *models.ProductUpdatedEvent) error {
	if event.CategoryID == "" {
		return nil
	}

	if err := w.cache.InvalidateCategory(ctx, event.CategoryID); err != nil {
		log.Printf("Failed to invalidate category %s: %v", event.CategoryID, err)
		return err
	}

	util.CategoryCacheInvalidations.Inc()
	log.Printf("Invalidated category cache: category=%s, product=%s", event.CategoryID, event.ProductID)
	return nil
}
