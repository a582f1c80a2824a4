package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Availability describes the stock state reported by a source
type Availability string

const (
	AvailabilityInStock      Availability = "in_stock"
	AvailabilityLimitedStock Availability = "limited_stock"
	AvailabilityOutOfStock   Availability = "out_of_stock"
	AvailabilityPreOrder     Availability = "pre_order"
)

// ProductInfo describes a product. It is both the search query handed to the
// pipeline and the matched item attached to every offer.
type ProductInfo struct {
	Name        string  `json:"name" validate:"required_without=Description"`
	Brand       string  `json:"brand,omitempty"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Validate checks that the product can be used as a query
func (p *ProductInfo) Validate() error {
	return validate.Struct(p)
}

// PriceQuote is one observed price for a product at a source
type PriceQuote struct {
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	Source       string       `json:"sourceName"`
	URL          string       `json:"url"`
	Availability Availability `json:"availability"`
	ShippingInfo string       `json:"shippingInfo,omitempty"`
	ObservedAt   time.Time    `json:"observedAt"`
}

// Offer pairs a product with a price quote from one source.
// SimilarityScore starts as the source's prior and is overwritten by the
// normalizer; OverallScore is set by the ranker.
type Offer struct {
	Product         ProductInfo `json:"productInfo"`
	Quote           PriceQuote  `json:"priceQuote"`
	SimilarityScore float64     `json:"similarityScore"`
	OverallScore    float64     `json:"overallScore"`
	ImageURL        string      `json:"imageUrl,omitempty"`
}

// RankedResult is the response of one search request
type RankedResult struct {
	ExactMatches    []Offer `json:"exactMatches"`
	SimilarProducts []Offer `json:"similarProducts"`
	ProcessingTime  float64 `json:"processingTimeSeconds"`
	QueryID         string  `json:"queryId"`
}

// SimilarResult is the response of a similar-products search
type SimilarResult struct {
	QueryID         string  `json:"queryId"`
	ProductName     string  `json:"productName"`
	SimilarProducts []Offer `json:"similarProducts"`
	TotalFound      int     `json:"totalFound"`
	ProcessingTime  float64 `json:"processingTimeSeconds"`
}

// DealsResult is the response of a best-deals search
type DealsResult struct {
	BestDeals  []Offer `json:"bestDeals"`
	Category   string  `json:"category,omitempty"`
	TotalDeals int     `json:"totalDeals"`
}

var validate = validator.New()
