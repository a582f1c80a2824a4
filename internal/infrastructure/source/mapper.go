package source

import (
	"regexp"
	"strings"
	"time"

	"github.com/pricehunt/backend/internal/domain"
)

var (
	outOfStockTerms = []string{"out of stock", "sold out", "unavailable", "not available", "no longer available"}
	preOrderTerms   = []string{"pre-order", "preorder", "pre order", "coming soon"}
	limitedTerms    = []string{"left in stock", "limited", "few left", "low stock"}

	onlyNLeft = regexp.MustCompile(`only \d+ left`)
)

// listing is the raw field set pulled out of one product container
type listing struct {
	Name         string
	Price        float64
	URL          string
	Availability string
	ImageURL     string
}

// MapAvailability classifies availability text. Unknown or empty text means in stock.
func MapAvailability(text string) domain.Availability {
	lower := strings.ToLower(text)
	if lower == "" {
		return domain.AvailabilityInStock
	}
	for _, term := range outOfStockTerms {
		if strings.Contains(lower, term) {
			return domain.AvailabilityOutOfStock
		}
	}
	for _, term := range preOrderTerms {
		if strings.Contains(lower, term) {
			return domain.AvailabilityPreOrder
		}
	}
	if onlyNLeft.MatchString(lower) {
		return domain.AvailabilityLimitedStock
	}
	for _, term := range limitedTerms {
		if strings.Contains(lower, term) {
			return domain.AvailabilityLimitedStock
		}
	}
	return domain.AvailabilityInStock
}

// mapToOffer converts an extracted listing into a domain offer
func mapToOffer(def *Definition, l listing, observedAt time.Time) domain.Offer {
	return domain.Offer{
		Product: domain.ProductInfo{
			Name:     l.Name,
			Category: def.Category,
		},
		Quote: domain.PriceQuote{
			Price:        l.Price,
			Currency:     def.Currency,
			Source:       def.Name,
			URL:          l.URL,
			Availability: MapAvailability(l.Availability),
			ObservedAt:   observedAt,
		},
		SimilarityScore: def.Prior,
		ImageURL:        l.ImageURL,
	}
}

// FallbackOffer describes the fixed synthetic offer a source returns when it has no live data
type FallbackOffer struct {
	Price       float64
	ProductPath string
	Category    string
}

// fallbackOffers builds the synthetic offers for a query
func fallbackOffers(def *Definition, query string, observedAt time.Time) []domain.Offer {
	offers := make([]domain.Offer, 0, len(def.Fallback))
	for _, fb := range def.Fallback {
		offers = append(offers, domain.Offer{
			Product: domain.ProductInfo{
				Name:        def.Name + ": " + query,
				Brand:       def.Name,
				Category:    fb.Category,
				Description: "Product matching " + query + " from " + def.Name,
			},
			Quote: domain.PriceQuote{
				Price:        fb.Price,
				Currency:     def.Currency,
				Source:       def.Name,
				URL:          strings.TrimSuffix(def.FallbackBaseURL, "/") + fb.ProductPath,
				Availability: domain.AvailabilityInStock,
				ObservedAt:   observedAt,
			},
			SimilarityScore: def.Prior,
		})
	}
	return offers
}
