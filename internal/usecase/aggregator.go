package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pricehunt/backend/internal/domain"
	"github.com/pricehunt/backend/internal/infrastructure/extract"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// defaultSearchTerm is used when the query has neither name nor brand
const defaultSearchTerm = "product"

// sourceResult is the outcome of one source task
type sourceResult struct {
	source  string
	offers  []domain.Offer
	err     error
	elapsed time.Duration
}

// Aggregator fans a query out to every configured source
type Aggregator struct {
	sources []domain.OfferSource
	logger  zerolog.Logger
}

// NewAggregator creates a new aggregator over the given sources
func NewAggregator(sources []domain.OfferSource, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		sources: sources,
		logger:  logger.With().Str("component", "aggregator").Logger(),
	}
}

// SourceNames lists the configured sources in query order
func (a *Aggregator) SourceNames() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return names
}

// BuildSearchQuery joins name and brand into the string sent to sources
func BuildSearchQuery(query domain.ProductInfo) string {
	q := strings.TrimSpace(strings.TrimSpace(query.Name) + " " + strings.TrimSpace(query.Brand))
	if q == "" {
		return defaultSearchTerm
	}
	return q
}

// ScrapeAll queries every source concurrently and concatenates their offers
// in source order. A failing source contributes nothing and never stops the
// others.
func (a *Aggregator) ScrapeAll(ctx context.Context, query domain.ProductInfo) []domain.Offer {
	searchTerm := BuildSearchQuery(query)
	results := make([]sourceResult, len(a.sources))

	// Tasks never return an error so one source cannot cancel its siblings
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.runSource(ctx, src, searchTerm)
			return nil
		})
	}
	_ = g.Wait()

	var offers []domain.Offer
	for _, r := range results {
		if r.err != nil {
			a.logger.Error().Err(r.err).Str("source", r.source).Msg("source failed")
			continue
		}
		a.logger.Debug().
			Str("source", r.source).
			Int("offers", len(r.offers)).
			Dur("elapsed", r.elapsed).
			Msg("source finished")
		offers = append(offers, r.offers...)
	}

	a.logger.Info().
		Str("query", searchTerm).
		Int("sources", len(a.sources)).
		Int("offers", len(offers)).
		Msg("aggregation complete")

	return offers
}

func (a *Aggregator) runSource(ctx context.Context, src domain.OfferSource, searchTerm string) (res sourceResult) {
	start := time.Now()
	res.source = src.Name()

	defer func() {
		if r := recover(); r != nil {
			res.offers = nil
			res.err = fmt.Errorf("source %s panicked: %v", res.source, r)
		}
		res.elapsed = time.Since(start)
	}()

	res.offers, res.err = src.Search(ctx, searchTerm)
	return res
}

// FilterValid drops offers with a non-positive price, a non-absolute URL or
// an empty product name
func FilterValid(offers []domain.Offer) []domain.Offer {
	valid := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if !(o.Quote.Price > 0) {
			continue
		}
		if !extract.IsAbsoluteURL(o.Quote.URL) {
			continue
		}
		if strings.TrimSpace(o.Product.Name) == "" {
			continue
		}
		valid = append(valid, o)
	}
	return valid
}
