package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pricehunt/backend/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultRelatedThreshold = 0.3
	defaultSimilarLimit     = 10
	maxSimilarLimit         = 50
	maxBestDealsLimit       = 20
	bestDealsSearchTerm     = "popular products"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	RealScrapingEnabled bool
	RelatedThreshold    float64
	BestDealsLimit      int
}

// ServiceInfo reports how the search pipeline is configured
type ServiceInfo struct {
	Status              string   `json:"status"`
	RealScrapingEnabled bool     `json:"realScrapingEnabled"`
	SimilarityThreshold float64  `json:"similarityThreshold"`
	MaxSimilarProducts  int      `json:"maxSimilarProducts"`
	Sources             []string `json:"sources"`
}

// SearchService runs the price comparison pipeline:
// aggregate -> filter -> normalize -> classify and rank
type SearchService struct {
	aggregator       *Aggregator
	normalizer       *Normalizer
	ranker           *Ranker
	realScraping     bool
	relatedThreshold float64
	bestDealsLimit   int
	logger           zerolog.Logger
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	aggregator *Aggregator,
	normalizer *Normalizer,
	ranker *Ranker,
	config SearchServiceConfig,
	logger zerolog.Logger,
) *SearchService {
	related := config.RelatedThreshold
	if related <= 0 || related > 1 {
		related = defaultRelatedThreshold
	}

	dealsLimit := config.BestDealsLimit
	if dealsLimit <= 0 {
		dealsLimit = defaultBestDealsLimit
	}

	return &SearchService{
		aggregator:       aggregator,
		normalizer:       normalizer,
		ranker:           ranker,
		realScraping:     config.RealScrapingEnabled,
		relatedThreshold: related,
		bestDealsLimit:   dealsLimit,
		logger:           logger.With().Str("component", "search_service").Logger(),
	}
}

// Search compares prices for a product across all sources.
// Only an invalid query is reported as an error; any failure inside the
// pipeline yields an empty result carrying the elapsed time.
func (s *SearchService) Search(ctx context.Context, query domain.ProductInfo, queryID string) (*domain.RankedResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	start := time.Now()
	if queryID == "" {
		queryID = uuid.NewString()
	}

	result := &domain.RankedResult{
		ExactMatches:    []domain.Offer{},
		SimilarProducts: []domain.Offer{},
		QueryID:         queryID,
	}

	err := s.guard(func() {
		offers := s.collect(ctx, query)
		result.ExactMatches, result.SimilarProducts = s.ranker.Classify(query, offers)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("query_id", queryID).Msg("search pipeline failed")
		result.ExactMatches = []domain.Offer{}
		result.SimilarProducts = []domain.Offer{}
	}

	result.ProcessingTime = time.Since(start).Seconds()

	s.logger.Info().
		Str("query_id", queryID).
		Str("product", query.Name).
		Int("exact", len(result.ExactMatches)).
		Int("similar", len(result.SimilarProducts)).
		Float64("seconds", result.ProcessingTime).
		Msg("search complete")

	return result, nil
}

// SimilarProducts finds products related to name, keeping offers whose
// similarity to it exceeds the related threshold
func (s *SearchService) SimilarProducts(ctx context.Context, name, category string, limit int) (*domain.SimilarResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	limit = min(limit, maxSimilarLimit)

	start := time.Now()
	query := domain.ProductInfo{
		Name:        name,
		Category:    category,
		Description: "Similar products for " + name,
	}

	result := &domain.SimilarResult{
		QueryID:         uuid.NewString(),
		ProductName:     name,
		SimilarProducts: []domain.Offer{},
	}

	err := s.guard(func() {
		offers := s.collect(ctx, query)

		related := make([]domain.Offer, 0, len(offers))
		for _, o := range offers {
			o.SimilarityScore = s.normalizer.Similarity(query, o.Product)
			if o.SimilarityScore > s.relatedThreshold {
				related = append(related, o)
			}
		}

		ranked := s.ranker.RankOffers(related)
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		result.SimilarProducts = ranked
	})
	if err != nil {
		s.logger.Error().Err(err).Str("product", name).Msg("similar products search failed")
		result.SimilarProducts = []domain.Offer{}
	}

	result.TotalFound = len(result.SimilarProducts)
	result.ProcessingTime = time.Since(start).Seconds()
	return result, nil
}

// BestDeals returns the top in-stock offers for a category
func (s *SearchService) BestDeals(ctx context.Context, category string, limit int) (*domain.DealsResult, error) {
	if limit <= 0 {
		limit = s.bestDealsLimit
	}
	limit = min(limit, maxBestDealsLimit)

	query := domain.ProductInfo{
		Name:        bestDealsSearchTerm,
		Category:    category,
		Description: "Best deals search",
	}

	result := &domain.DealsResult{
		BestDeals: []domain.Offer{},
		Category:  category,
	}

	err := s.guard(func() {
		offers := s.collect(ctx, query)
		result.BestDeals = s.ranker.BestDeals(offers, limit)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("best deals search failed")
		result.BestDeals = []domain.Offer{}
	}

	result.TotalDeals = len(result.BestDeals)
	return result, nil
}

// Info describes the running configuration
func (s *SearchService) Info() ServiceInfo {
	return ServiceInfo{
		Status:              "healthy",
		RealScrapingEnabled: s.realScraping,
		SimilarityThreshold: s.ranker.similarityThreshold,
		MaxSimilarProducts:  s.ranker.maxSimilarProducts,
		Sources:             s.aggregator.SourceNames(),
	}
}

// collect gathers valid offers from every source with normalized names
func (s *SearchService) collect(ctx context.Context, query domain.ProductInfo) []domain.Offer {
	offers := s.aggregator.ScrapeAll(ctx, query)
	valid := FilterValid(offers)
	if dropped := len(offers) - len(valid); dropped > 0 {
		s.logger.Debug().Int("dropped", dropped).Msg("filtered invalid offers")
	}
	return s.normalizer.NormalizeOffers(valid)
}

// guard runs fn and converts a panic into an error
func (s *SearchService) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panicked: %v", r)
		}
	}()
	fn()
	return nil
}
