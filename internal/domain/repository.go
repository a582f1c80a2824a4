package domain

import "context"

// OfferSource is one price-providing origin the aggregator can query
type OfferSource interface {
	Name() string
	Search(ctx context.Context, query string) ([]Offer, error)
}
