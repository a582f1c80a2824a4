package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pricehunt/backend/internal/domain"
	"github.com/pricehunt/backend/internal/usecase"
	"github.com/rs/zerolog"
)

const (
	serviceName    = "pricehunt-backend"
	serviceVersion = "1.0.0"

	maxSimilarLimit = 50
	maxDealsLimit   = 20
)

// PriceSearcher is the search pipeline the handlers expose
type PriceSearcher interface {
	Search(ctx context.Context, query domain.ProductInfo, queryID string) (*domain.RankedResult, error)
	SimilarProducts(ctx context.Context, name, category string, limit int) (*domain.SimilarResult, error)
	BestDeals(ctx context.Context, category string, limit int) (*domain.DealsResult, error)
	Info() usecase.ServiceInfo
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher PriceSearcher
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher PriceSearcher, logger zerolog.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		logger:   logger.With().Str("component", "http_handler").Logger(),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Search handles price comparison requests. The body is a ProductInfo; an
// optional X-Query-ID header sets the query id.
func (h *Handler) Search(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var query domain.ProductInfo
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), query, c.GetHeader("X-Query-ID"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SimilarProducts handles GET /search/similar/:productName
func (h *Handler) SimilarProducts(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	limit, ok := queryLimit(c, maxSimilarLimit)
	if !ok {
		return
	}

	result, err := h.searcher.SimilarProducts(c.Request.Context(), c.Param("productName"), c.Query("category"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BestDeals handles GET /search/best-deals
func (h *Handler) BestDeals(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	limit, ok := queryLimit(c, maxDealsLimit)
	if !ok {
		return
	}

	result, err := h.searcher.BestDeals(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchHealth reports the search pipeline configuration
func (h *Handler) SearchHealth(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.JSON(http.StatusOK, h.searcher.Info())
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search service not configured"})
		return false
	}
	return true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product name or description is required"})
		return
	}
	h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// queryLimit parses the optional limit parameter. Zero means "use the default".
func queryLimit(c *gin.Context, maxLimit int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "limit must be an integer between 1 and " + strconv.Itoa(maxLimit),
		})
		return 0, false
	}
	return limit, true
}
