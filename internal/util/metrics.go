package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EnrichmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_enrichments_total",
		Help: "Total number of successful profile enrichments",
	})

	EnrichmentsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_enrichments_skipped_total",
		Help: "Total number of enrichments skipped because no similar products were found",
	})

	EnrichmentsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_enrichments_failed_total",
		Help: "Total number of failed profile enrichments",
	}, []string{"reason"})

	CleanupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_cleanups_total",
		Help: "Total number of profile cleanups",
	})

	CleanupsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_cleanups_failed_total",
		Help: "Total number of failed profile cleanups",
	}, []string{"reason"})

	SimilarProductsPerEnrichment = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "similar_products_per_enrichment",
		Help:    "Number of similar products written per enrichment",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})

	RankingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "similarity_ranking_latency_seconds",
		Help:    "Latency of candidate retrieval and ranking",
		Buckets: prometheus.DefBuckets,
	})

	UpstreamRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_latency_seconds",
		Help:    "Latency of e-commerce platform and CRM API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"system"})

	CategoryCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "category_cache_hits_total",
		Help: "Total number of category listing cache hits",
	})

	CategoryCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "category_cache_misses_total",
		Help: "Total number of category listing cache misses",
	})

	CategoryCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "category_cache_invalidations_total",
		Help: "Total number of category listings invalidated by catalog events",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
