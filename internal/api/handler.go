package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"similar-products-service/internal/crm"
	"similar-products-service/internal/models"
	"similar-products-service/internal/platform"
	"similar-products-service/internal/service"
	"similar-products-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	enrichment    *service.EnrichmentService
	webhookSecret string
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(enrichment *service.EnrichmentService, webhookSecret string) *Handler {
	return &Handler{
		enrichment:    enrichment,
		webhookSecret: webhookSecret,
		logger:        util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	webhooks := router.Group("/webhook", h.webhookAuth())
	{
		webhooks.POST("/enrich", h.enrichProfile)
		webhooks.POST("/cleanup", h.cleanupProfile)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/history/:profile", h.profileHistory)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// EnrichRequest is the inbound enrich webhook payload. The profile is
// referenced by email or platform profile ID; ProductName is carried
// by some senders but unused.
type EnrichRequest struct {
	Email       string `json:"email"`
	ProfileID   string `json:"profileId"`
	ProductID   string `json:"ProductID"`
	ProductName string `json:"ProductName"`
}

// CleanupRequest is the inbound cleanup webhook payload. An omitted
// ProductID removes the profile's entire enrichment list.
type CleanupRequest struct {
	Email     string `json:"email"`
	ProfileID string `json:"profileId"`
	ProductID string `json:"ProductID"`
}

func (r *EnrichRequest) profileRef() string {
	if r.Email != "" {
		return r.Email
	}
	return r.ProfileID
}

func (r *CleanupRequest) profileRef() string {
	if r.Email != "" {
		return r.Email
	}
	return r.ProfileID
}

// enrichProfile handles the back-in-stock subscription webhook
func (h *Handler) enrichProfile(c *gin.Context) {
	start := time.Now()

	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
		})
		return
	}

	if req.profileRef() == "" || req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Missing email/profileId or ProductID",
		})
		return
	}

	event := models.SubscriptionEvent{
		ProfileRef: req.profileRef(),
		ProductID:  req.ProductID,
		ReceivedAt: start,
	}

	result, err := h.enrichment.Enrich(c.Request.Context(), event)
	if err != nil {
		status := statusForError(err)
		h.logger.Error("Enrichment failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("profile_hash", util.HashProfileRef(event.ProfileRef)),
			zap.String("product_id", event.ProductID),
			zap.Int("status", status),
			zap.Error(err))

		c.JSON(status, gin.H{
			"status":    "error",
			"message":   publicMessage(err),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                 "success",
		"similar_products_count": result.SimilarCount,
		"timestamp":              time.Now().UTC().Format(time.RFC3339),
		"duration_ms":            time.Since(start).Milliseconds(),
	})
}

// cleanupProfile handles the post-send cleanup webhook
func (h *Handler) cleanupProfile(c *gin.Context) {
	var req CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
		})
		return
	}

	if req.profileRef() == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Missing email/profileId",
		})
		return
	}

	if err := h.enrichment.Cleanup(c.Request.Context(), req.profileRef(), req.ProductID); err != nil {
		status := statusForError(err)
		h.logger.Error("Cleanup failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("profile_hash", util.HashProfileRef(req.profileRef())),
			zap.Int("status", status),
			zap.Error(err))

		c.JSON(status, gin.H{
			"status":    "error",
			"message":   publicMessage(err),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// profileHistory returns recent audited operations for a profile
func (h *Handler) profileHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.enrichment.History(c.Request.Context(), c.Param("profile"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// webhookAuth validates the X-Webhook-Token header with a
// constant-time comparison so timing cannot leak the secret.
func (h *Handler) webhookAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Webhook-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookSecret)) != 1 {
			h.logger.Warn("Unauthorized webhook attempt",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}

// statusForError maps orchestrator errors onto HTTP statuses: missing
// product or profile is a client-visible 404, upstream timeouts are
// 504 and other upstream failures 502. Both gateway statuses signal
// the webhook sender that a retry is safe.
func statusForError(err error) int {
	switch {
	case errors.Is(err, platform.ErrProductNotFound), errors.Is(err, crm.ErrProfileNotFound):
		return http.StatusNotFound
	case util.IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// publicMessage keeps upstream error details out of webhook responses.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, platform.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, crm.ErrProfileNotFound):
		return "Profile not found"
	case util.IsTimeout(err):
		return "Upstream timeout"
	default:
		return "Upstream error"
	}
}

// requestIDMiddleware assigns a request ID when the caller did not
// send one, so webhook deliveries can be correlated across log lines.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
