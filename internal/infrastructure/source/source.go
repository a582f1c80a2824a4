// Package source implements the price sources: a paced, retrying page client,
// the selector-cascade parser and the built-in retailer definitions.
package source

import (
	"context"
	"fmt"

	"github.com/pricehunt/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Fetcher retrieves raw page content
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// Source is one retailer: a fetcher plus the parser for its pages
type Source struct {
	def    *Definition
	client Fetcher
	parser *Parser
}

// New builds a source from its definition and fetcher
func New(def Definition, client Fetcher, maxProducts int, logger zerolog.Logger) *Source {
	d := def
	return &Source{
		def:    &d,
		client: client,
		parser: NewParser(&d, maxProducts, logger),
	}
}

// NewSources builds one source per definition, each with its own client
func NewSources(defs []Definition, cfg ClientConfig, maxProducts int, logger zerolog.Logger) []domain.OfferSource {
	sources := make([]domain.OfferSource, 0, len(defs))
	for _, def := range defs {
		client := NewClient(def.Domain(), cfg, logger)
		sources = append(sources, New(def, client, maxProducts, logger))
	}
	return sources
}

// Name returns the retailer name
func (s *Source) Name() string {
	return s.def.Name
}

// Search fetches and parses the retailer's search page for query.
// Fetch failures are absorbed into fallback offers; only a panic while
// parsing surfaces as an error.
func (s *Source) Search(ctx context.Context, query string) (offers []domain.Offer, err error) {
	defer func() {
		if r := recover(); r != nil {
			offers = nil
			err = fmt.Errorf("source %s panicked: %v", s.def.Name, r)
		}
	}()

	res := s.client.Fetch(ctx, s.def.SearchURL(query))
	offers, _ = s.parser.Parse(res, query)
	return offers, nil
}
