// Package extract holds the pure text helpers used by source parsers:
// price parsing, product name cleaning and URL resolution.
package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Sanity bounds for a parsed price. Anything outside is treated as noise.
var (
	minPrice = decimal.Zero
	maxPrice = decimal.NewFromInt(1_000_000)
)

const amount = `(\d+(?:,\d{3})*(?:\.\d{1,2})?)`

// pricePatterns is a priority list: specific currency markers are tried before
// the bare-numeral fallback so incidental digits are not picked up as prices.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$£€¥₹]\s*` + amount),                                     // $1,234.56
	regexp.MustCompile(amount + `\s*[$£€¥₹]`),                                     // 1234.56$
	regexp.MustCompile(`(?i)\b(?:USD|EUR|GBP|CAD|AUD|JPY|INR)\s*` + amount),       // USD 1234.56
	regexp.MustCompile(`(?i)` + amount + `\s*(?:USD|EUR|GBP|CAD|AUD|JPY|INR)\b`),  // 1234.56 USD
	regexp.MustCompile(`(?i)\bprice\s*:?\s*[$£€]?\s*` + amount),                   // Price: 1234.56
	regexp.MustCompile(`(\d+(?:,\d{3})*\.\d{2})\b`),                                // 1234.56
}

// ParsePrice extracts a price from free text. The first matching pattern wins;
// its value must pass the sanity bounds or no price is returned.
func ParsePrice(text string) (float64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		value, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return 0, false
		}
		if !ValidPrice(value) {
			return 0, false
		}
		price, _ := value.Round(2).Float64()
		return price, true
	}

	return 0, false
}

// ValidPrice reports whether a price is strictly positive and below the absurdity ceiling
func ValidPrice(value decimal.Decimal) bool {
	return value.GreaterThan(minPrice) && value.LessThan(maxPrice)
}
