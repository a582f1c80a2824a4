package usecase

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/pricehunt/backend/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultSimilarityThreshold = 0.7
	defaultMaxSimilarProducts  = 10
	defaultBestDealsLimit      = 5
	defaultSourceTrust         = 0.5
)

// RankingWeights controls how much each sub-score contributes to the overall score
type RankingWeights struct {
	Price        float64
	Similarity   float64
	Trust        float64
	Availability float64
	Recency      float64
}

// DefaultRankingWeights sum to 1
var DefaultRankingWeights = RankingWeights{
	Price:        0.3,
	Similarity:   0.4,
	Trust:        0.1,
	Availability: 0.1,
	Recency:      0.1,
}

// DefaultSourceTrust is the reliability prior for each known source
func DefaultSourceTrust() map[string]float64 {
	return map[string]float64{
		"amazon":        0.9,
		"ebay":          0.8,
		"bestbuy":       0.85,
		"walmart":       0.8,
		"target":        0.75,
		"generic store": 0.5,
	}
}

// RankerConfig holds configuration for the ranker
type RankerConfig struct {
	SimilarityThreshold float64
	MaxSimilarProducts  int
	Weights             *RankingWeights
	SourceTrust         map[string]float64
}

// Ranker scores offers and splits them into exact and similar matches
type Ranker struct {
	normalizer          *Normalizer
	similarityThreshold float64
	maxSimilarProducts  int
	weights             RankingWeights
	sourceTrust         map[string]float64
	now                 func() time.Time
	logger              zerolog.Logger
}

// NewRanker creates a new ranker
func NewRanker(normalizer *Normalizer, config RankerConfig, logger zerolog.Logger) *Ranker {
	threshold := config.SimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultSimilarityThreshold
	}

	maxSimilar := config.MaxSimilarProducts
	if maxSimilar <= 0 {
		maxSimilar = defaultMaxSimilarProducts
	}

	weights := DefaultRankingWeights
	if config.Weights != nil {
		weights = *config.Weights
	}

	trustSource := config.SourceTrust
	if trustSource == nil {
		trustSource = DefaultSourceTrust()
	}
	trust := make(map[string]float64, len(trustSource))
	for k, v := range trustSource {
		trust[strings.ToLower(k)] = v
	}

	return &Ranker{
		normalizer:          normalizer,
		similarityThreshold: threshold,
		maxSimilarProducts:  maxSimilar,
		weights:             weights,
		sourceTrust:         trust,
		now:                 time.Now,
		logger:              logger.With().Str("component", "ranker").Logger(),
	}
}

// PriceScore rewards cheaper offers: 1 at the minimum price, 0 at the maximum
func PriceScore(price float64, prices []float64) float64 {
	if !(price > 0) {
		return 0
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range prices {
		if !(p > 0) || math.IsInf(p, 0) {
			continue
		}
		lo = min(lo, p)
		hi = max(hi, p)
	}
	if math.IsInf(lo, 1) {
		return 0
	}
	if hi == lo {
		return 1.0
	}

	return clamp01(1.0 - (price-lo)/(hi-lo))
}

// TrustScore looks up the source prior, defaulting to 0.5 for unknown sources
func (r *Ranker) TrustScore(source string) float64 {
	if v, ok := r.sourceTrust[strings.ToLower(strings.TrimSpace(source))]; ok {
		return clamp01(v)
	}
	return defaultSourceTrust
}

// AvailabilityScore maps an availability string onto [0,1]
func AvailabilityScore(availability domain.Availability) float64 {
	a := strings.ToLower(string(availability))
	switch {
	case strings.Contains(a, "out_of_stock") || strings.Contains(a, "unavailable"):
		return 0.2
	case strings.Contains(a, "in_stock") || strings.Contains(a, "available"):
		return 1.0
	case strings.Contains(a, "limited"):
		return 0.7
	case strings.Contains(a, "pre_order"):
		return 0.5
	default:
		return 0.2
	}
}

// RecencyScore decays with the age of the observation.
// A missing timestamp scores the neutral 0.5.
func (r *Ranker) RecencyScore(observedAt time.Time) float64 {
	if observedAt.IsZero() {
		return 0.5
	}

	age := r.now().Sub(observedAt)
	switch {
	case age < time.Hour:
		return 1.0
	case age < 24*time.Hour:
		return 0.9
	case age < 7*24*time.Hour:
		return 0.7
	default:
		return 0.5
	}
}

// OverallScore combines the weighted sub-scores of one offer against the
// prices of the set it is ranked in
func (r *Ranker) OverallScore(offer domain.Offer, prices []float64) float64 {
	score := r.weights.Price*PriceScore(offer.Quote.Price, prices) +
		r.weights.Similarity*clamp01(offer.SimilarityScore) +
		r.weights.Trust*r.TrustScore(offer.Quote.Source) +
		r.weights.Availability*AvailabilityScore(offer.Quote.Availability) +
		r.weights.Recency*r.RecencyScore(offer.Quote.ObservedAt)

	return clamp01(score)
}

// RankOffers returns a copy of offers with OverallScore set, sorted by it in
// descending order. Equal scores keep their input order.
func (r *Ranker) RankOffers(offers []domain.Offer) []domain.Offer {
	if len(offers) == 0 {
		return []domain.Offer{}
	}

	prices := make([]float64, len(offers))
	for i, o := range offers {
		prices[i] = o.Quote.Price
	}

	ranked := make([]domain.Offer, len(offers))
	for i, o := range offers {
		o.OverallScore = r.OverallScore(o, prices)
		ranked[i] = o
	}

	slices.SortStableFunc(ranked, func(a, b domain.Offer) int {
		return cmp.Compare(b.OverallScore, a.OverallScore)
	})

	return ranked
}

// Classify scores each offer against the query and splits the set at the
// similarity threshold. Both groups are ranked; similar products are capped.
func (r *Ranker) Classify(query domain.ProductInfo, offers []domain.Offer) (exact, similar []domain.Offer) {
	exact = make([]domain.Offer, 0, len(offers))
	similar = make([]domain.Offer, 0, len(offers))

	for _, o := range offers {
		o.SimilarityScore = r.normalizer.Similarity(query, o.Product)
		if o.SimilarityScore >= r.similarityThreshold {
			exact = append(exact, o)
		} else {
			similar = append(similar, o)
		}
	}

	exact = r.RankOffers(exact)
	similar = r.RankOffers(similar)
	if len(similar) > r.maxSimilarProducts {
		similar = similar[:r.maxSimilarProducts]
	}

	r.logger.Debug().
		Int("offers", len(offers)).
		Int("exact", len(exact)).
		Int("similar", len(similar)).
		Msg("classified offers")

	return exact, similar
}

// BestDeals ranks the in-stock offers and keeps the top limit
func (r *Ranker) BestDeals(offers []domain.Offer, limit int) []domain.Offer {
	if limit <= 0 {
		limit = defaultBestDealsLimit
	}

	inStock := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if strings.Contains(strings.ToLower(string(o.Quote.Availability)), string(domain.AvailabilityInStock)) {
			inStock = append(inStock, o)
		}
	}

	ranked := r.RankOffers(inStock)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
