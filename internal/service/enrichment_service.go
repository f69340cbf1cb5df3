package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"similar-products-service/internal/crm"
	"similar-products-service/internal/models"
	"similar-products-service/internal/platform"
	"similar-products-service/internal/similarity"
	"similar-products-service/internal/store"
	"similar-products-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditLog records enrichment and cleanup operations for the ops
// history endpoint. Implemented by store.Store.
type AuditLog interface {
	RecordOperation(ctx context.Context, entry *store.OperationLog) error
	ListByProfileHash(ctx context.Context, profileHash string, limit int) ([]store.OperationLog, error)
}

// EventSink publishes domain events after profile writes. Implemented
// by broker.EventPublisher.
type EventSink interface {
	PublishProfileEnriched(ctx context.Context, event *models.ProfileEnrichedEvent) error
	PublishProfileCleaned(ctx context.Context, event *models.ProfileCleanedEvent) error
}

// EnrichResult is the outcome of an enrich operation.
type EnrichResult struct {
	ProductID    string `json:"product_id"`
	SimilarCount int    `json:"similar_count"`
}

// EnrichmentService orchestrates the enrichment workflow: resolve the
// subscribed product, retrieve and rank candidates, merge the result
// into the remote profile, and the inverse cleanup. It keeps no
// mutable state between requests; the remote profile store is the only
// shared resource, mutated via read-modify-write keyed by product ID.
type EnrichmentService struct {
	catalog  platform.Catalog
	profiles crm.ProfileStore
	ranker   *similarity.Ranker
	audit    AuditLog
	events   EventSink
	logger   *zap.Logger
	limit    int
}

// NewEnrichmentService creates a new enrichment service. audit and
// events are best-effort collaborators; failures there are logged but
// never fail the operation.
func NewEnrichmentService(
	catalog platform.Catalog,
	profiles crm.ProfileStore,
	ranker *similarity.Ranker,
	audit AuditLog,
	events EventSink,
	limit int,
) *EnrichmentService {
	if limit <= 0 {
		limit = similarity.DefaultLimit
	}
	return &EnrichmentService{
		catalog:  catalog,
		profiles: profiles,
		ranker:   ranker,
		audit:    audit,
		events:   events,
		logger:   util.GetLogger(),
		limit:    limit,
	}
}

// Enrich handles one subscription event: it ranks in-stock substitutes
// for the subscribed product and merges an EnrichmentRecord into the
// profile's enrichment list. An empty ranking writes nothing, so empty
// recommendation sections never render in the email template. The
// operation is idempotent per (profile, product): re-running replaces
// only that product's record. No profile state is mutated on failure.
func (s *EnrichmentService) Enrich(ctx context.Context, event models.SubscriptionEvent) (*EnrichResult, error) {
	ctx, span := util.StartSpan(ctx, "EnrichmentService.Enrich")
	defer span.End()

	start := time.Now()
	profileHash := util.HashProfileRef(event.ProfileRef)

	product, err := s.catalog.GetProduct(ctx, event.ProductID)
	if err != nil {
		util.EnrichmentsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.recordAudit(ctx, profileHash, event.ProductID, store.OperationEnrich, store.StatusFailed, 0, start)
		return nil, fmt.Errorf("resolve product %s: %w", event.ProductID, err)
	}

	ranked, err := s.rankSimilar(ctx, product)
	if err != nil {
		util.EnrichmentsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.recordAudit(ctx, profileHash, event.ProductID, store.OperationEnrich, store.StatusFailed, 0, start)
		return nil, err
	}

	if len(ranked) == 0 {
		s.logger.Info("No similar products found, profile left unchanged",
			zap.String("profile_hash", profileHash),
			zap.String("product_id", event.ProductID))
		util.EnrichmentsSkippedTotal.Inc()
		s.recordAudit(ctx, profileHash, event.ProductID, store.OperationEnrich, store.StatusSkipped, 0, start)
		return &EnrichResult{ProductID: event.ProductID, SimilarCount: 0}, nil
	}

	similarIDs := make([]string, len(ranked))
	for i, result := range ranked {
		similarIDs[i] = result.ProductID
	}

	// Read-modify-write against the remote list. Concurrent enrich
	// calls for other products on the same profile survive because the
	// merge is keyed by product ID; a concurrent write to the same key
	// is last-writer-wins.
	list, err := s.profiles.GetProfileEnrichment(ctx, event.ProfileRef)
	if err != nil {
		util.EnrichmentsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.recordAudit(ctx, profileHash, event.ProductID, store.OperationEnrich, store.StatusFailed, 0, start)
		return nil, fmt.Errorf("read profile enrichment: %w", err)
	}

	record := models.EnrichmentRecord{
		ProductID:  event.ProductID,
		SimilarIDs: similarIDs,
		EnrichedAt: time.Now().UTC(),
	}

	if err := s.profiles.SetProfileEnrichment(ctx, event.ProfileRef, list.Upsert(record)); err != nil {
		util.EnrichmentsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.recordAudit(ctx, profileHash, event.ProductID, store.OperationEnrich, store.StatusFailed, 0, start)
		return nil, fmt.Errorf("write profile enrichment: %w", err)
	}

	util.EnrichmentsTotal.Inc()
	util.SimilarProductsPerEnrichment.Observe(float64(len(similarIDs)))

	s.logger.Info("Profile enriched",
		zap.String("profile_hash", profileHash),
		zap.String("product_id", event.ProductID),
		zap.Int("similar_count", len(similarIDs)))

	s.recordAudit(ctx, profileHash, event.ProductID, store.OperationEnrich, store.StatusSuccess, len(similarIDs), start)
	s.publishEnriched(ctx, profileHash, event.ProductID, len(similarIDs))

	return &EnrichResult{ProductID: event.ProductID, SimilarCount: len(similarIDs)}, nil
}

// Cleanup removes the enrichment record for productID from the
// profile's list, or the whole list when productID is empty. A missing
// record is a no-op so retried or out-of-order webhook deliveries stay
// safe.
func (s *EnrichmentService) Cleanup(ctx context.Context, profileRef, productID string) error {
	ctx, span := util.StartSpan(ctx, "EnrichmentService.Cleanup")
	defer span.End()

	start := time.Now()
	profileHash := util.HashProfileRef(profileRef)

	list, err := s.profiles.GetProfileEnrichment(ctx, profileRef)
	if err != nil {
		util.CleanupsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.recordAudit(ctx, profileHash, productID, store.OperationCleanup, store.StatusFailed, 0, start)
		return fmt.Errorf("read profile enrichment: %w", err)
	}

	var updated models.ProfileEnrichmentList
	switch {
	case productID == "":
		if len(list) == 0 {
			s.recordAudit(ctx, profileHash, productID, store.OperationCleanup, store.StatusSkipped, 0, start)
			return nil
		}
		updated = models.ProfileEnrichmentList{}
	default:
		if list.Find(productID) == nil {
			s.logger.Info("No enrichment record to clean up",
				zap.String("profile_hash", profileHash),
				zap.String("product_id", productID))
			s.recordAudit(ctx, profileHash, productID, store.OperationCleanup, store.StatusSkipped, 0, start)
			return nil
		}
		updated = list.Remove(productID)
	}

	if err := s.profiles.SetProfileEnrichment(ctx, profileRef, updated); err != nil {
		util.CleanupsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.recordAudit(ctx, profileHash, productID, store.OperationCleanup, store.StatusFailed, 0, start)
		return fmt.Errorf("write profile enrichment: %w", err)
	}

	util.CleanupsTotal.Inc()

	s.logger.Info("Profile cleaned up",
		zap.String("profile_hash", profileHash),
		zap.String("product_id", orAll(productID)))

	s.recordAudit(ctx, profileHash, productID, store.OperationCleanup, store.StatusSuccess, 0, start)
	s.publishCleaned(ctx, profileHash, productID)

	return nil
}

// History returns the recent audited operations for a profile.
func (s *EnrichmentService) History(ctx context.Context, profileRef string, limit int) ([]store.OperationLog, error) {
	if s.audit == nil {
		return []store.OperationLog{}, nil
	}
	return s.audit.ListByProfileHash(ctx, util.HashProfileRef(profileRef), limit)
}

// rankSimilar retrieves the candidate pool and ranks it against the
// reference product. A reference without a category, or a category
// with no other in-stock members, yields an empty ranking; that is a
// valid terminal state, not a failure.
func (s *EnrichmentService) rankSimilar(ctx context.Context, reference *models.Product) ([]models.SimilarityResult, error) {
	ctx, span := util.StartSpan(ctx, "EnrichmentService.rankSimilar")
	defer span.End()

	defer func(start time.Time) {
		util.RankingLatency.Observe(time.Since(start).Seconds())
	}(time.Now())

	if reference.CategoryID == "" {
		return []models.SimilarityResult{}, nil
	}

	candidates, err := s.catalog.ListProductsByCategory(ctx, reference.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("list category %s: %w", reference.CategoryID, err)
	}

	return s.ranker.Rank(*reference, candidates, s.limit), nil
}

func (s *EnrichmentService) recordAudit(ctx context.Context, profileHash, productID, operation, status string, similarCount int, start time.Time) {
	if s.audit == nil {
		return
	}

	entry := &store.OperationLog{
		ProfileHash:  profileHash,
		ProductID:    productID,
		Operation:    operation,
		Status:       status,
		SimilarCount: similarCount,
		DurationMs:   time.Since(start).Milliseconds(),
	}
	if err := s.audit.RecordOperation(ctx, entry); err != nil {
		s.logger.Error("Failed to record audit entry", zap.Error(err))
	}
}

func (s *EnrichmentService) publishEnriched(ctx context.Context, profileHash, productID string, similarCount int) {
	if s.events == nil {
		return
	}

	event := &models.ProfileEnrichedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProfileEnriched,
			Timestamp: time.Now(),
		},
		ProfileHash:  profileHash,
		ProductID:    productID,
		SimilarCount: similarCount,
	}
	if err := s.events.PublishProfileEnriched(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProfileEnriched event", zap.Error(err))
	}
}

func (s *EnrichmentService) publishCleaned(ctx context.Context, profileHash, productID string) {
	if s.events == nil {
		return
	}

	event := &models.ProfileCleanedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProfileCleaned,
			Timestamp: time.Now(),
		},
		ProfileHash: profileHash,
		ProductID:   productID,
		RemovedAll:  productID == "",
	}
	if err := s.events.PublishProfileCleaned(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProfileCleaned event", zap.Error(err))
	}
}

// failureReason maps an error to a low-cardinality metrics label.
func failureReason(err error) string {
	switch {
	case util.IsTimeout(err):
		return "upstream_timeout"
	case isNotFound(err):
		return "not_found"
	default:
		return "upstream_error"
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, platform.ErrProductNotFound) || errors.Is(err, crm.ErrProfileNotFound)
}

func orAll(productID string) string {
	if productID == "" {
		return "all"
	}
	return productID
}
