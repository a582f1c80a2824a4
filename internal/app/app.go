// Package app assembles the search pipeline shared by the server and the CLI.
package app

import (
	"github.com/pricehunt/backend/config"
	"github.com/pricehunt/backend/internal/infrastructure/source"
	"github.com/pricehunt/backend/internal/usecase"
	"github.com/rs/zerolog"
)

// NewSearchService wires sources, matching and ranking from configuration
func NewSearchService(cfg *config.Config, logger zerolog.Logger) *usecase.SearchService {
	sources := source.NewSources(
		source.DefaultDefinitions(),
		cfg.Scraper.ClientConfig(),
		cfg.Scraper.MaxProductsPerSource,
		logger,
	)

	normalizer := usecase.NewNormalizer(logger)
	ranker := usecase.NewRanker(normalizer, usecase.RankerConfig{
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
		MaxSimilarProducts:  cfg.Matching.MaxSimilarProducts,
	}, logger)

	return usecase.NewSearchService(
		usecase.NewAggregator(sources, logger),
		normalizer,
		ranker,
		usecase.SearchServiceConfig{
			RealScrapingEnabled: cfg.Scraper.RealScrapingEnabled,
			RelatedThreshold:    cfg.Matching.RelatedThreshold,
			BestDealsLimit:      cfg.Matching.BestDealsLimit,
		},
		logger,
	)
}
