package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricehunt/backend/internal/domain"
	"github.com/pricehunt/backend/internal/infrastructure/extract"
	"github.com/rs/zerolog"
)

const defaultMaxProducts = 10

// Provenance tells whether parsed offers are live or synthetic
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
)

// Parser turns a fetched search page into offers for one source
type Parser struct {
	def         *Definition
	maxProducts int
	now         func() time.Time
	logger      zerolog.Logger
}

// NewParser creates a parser for a source definition
func NewParser(def *Definition, maxProducts int, logger zerolog.Logger) *Parser {
	if maxProducts <= 0 {
		maxProducts = defaultMaxProducts
	}
	return &Parser{
		def:         def,
		maxProducts: maxProducts,
		now:         time.Now,
		logger:      logger.With().Str("component", "source_parser").Str("source", def.Name).Logger(),
	}
}

// Parse extracts offers from a fetch result. It always returns offers:
// live ones when extraction succeeds, the source's fallback offers otherwise.
func (p *Parser) Parse(res FetchResult, query string) ([]domain.Offer, Provenance) {
	if !res.OK() {
		p.logger.Info().
			Str("provenance", string(ProvenanceFallback)).
			Str("reason", string(res.Reason)).
			AnErr("cause", res.Err).
			Msg("no content, using fallback offers")
		return fallbackOffers(p.def, query, p.now()), ProvenanceFallback
	}

	offers, err := p.extractOffers(res.Body, res.URL)
	if err != nil {
		p.logger.Info().
			Str("provenance", string(ProvenanceFallback)).
			Err(err).
			Msg("extraction failed, using fallback offers")
		return fallbackOffers(p.def, query, p.now()), ProvenanceFallback
	}

	p.logger.Info().
		Str("provenance", string(ProvenanceLive)).
		Int("offers", len(offers)).
		Msg("parsed live offers")
	return offers, ProvenanceLive
}

// extractOffers runs the container cascade and the per-field selectors
func (p *Parser) extractOffers(body, pageURL string) ([]domain.Offer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	containers, ok := selectContainers(doc, p.def.Containers)
	if !ok {
		return nil, domain.ErrNoContainers
	}

	base := pageURL
	if base == "" {
		base = p.def.BaseURL
	}

	observedAt := p.now()
	offers := make([]domain.Offer, 0, p.maxProducts)
	containers.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= p.maxProducts {
			return false
		}
		l, ok := p.extractListing(s, base)
		if ok {
			offers = append(offers, mapToOffer(p.def, l, observedAt))
		}
		return true
	})

	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: %d containers inspected", domain.ErrNoOffers, min(containers.Length(), p.maxProducts))
	}
	return offers, nil
}

// extractListing pulls the fields from one container.
// A container without a name or a valid price is skipped.
func (p *Parser) extractListing(s *goquery.Selection, base string) (listing, bool) {
	fields := p.def.Fields

	name := extract.CleanName(firstText(s, fields.Name, func(t string) bool {
		return extract.CleanName(t) != ""
	}))
	if name == "" {
		return listing{}, false
	}

	var price float64
	firstText(s, fields.Price, func(t string) bool {
		v, ok := extract.ParsePrice(t)
		if ok {
			price = v
		}
		return ok
	})
	if price <= 0 {
		return listing{}, false
	}

	link := extract.ResolveURL(base, firstAttr(s, fields.URL, "href"))
	if !extract.IsAbsoluteURL(link) {
		// no usable product link; point at the search page instead
		link = base
	}

	return listing{
		Name:         name,
		Price:        price,
		URL:          link,
		Availability: firstText(s, fields.Availability, func(string) bool { return true }),
		ImageURL:     extract.ResolveURL(base, firstAttr(s, fields.Image, "src", "data-src")),
	}, true
}
