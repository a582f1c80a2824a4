package usecase

import (
	"math"
	"regexp"
	"strings"

	"github.com/pricehunt/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Package-level compiled regex patterns for performance
var (
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)

	storagePattern = regexp.MustCompile(`\b(\d+)\s*(gb|tb|mb)\b`)
	screenPattern  = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:inches|inch|in\b|")`)
	weightPattern  = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(oz|lbs|lb|kg|g)\b`)
	colorPattern   = regexp.MustCompile(`\b(black|white|red|blue|green|yellow|purple|pink|grey|gray|silver|gold)\b`)

	// "3g", "4g" and "5g" name a cellular generation, not a weight
	networkGenerations = map[string]bool{"3": true, "4": true, "5": true}
)

// Similarity weights
const (
	nameWeight    = 0.4
	featureWeight = 0.3
	textWeight    = 0.3
	partialCredit = 0.5 // differing feature values earn half their string ratio
)

// Feature keys
const (
	FeatureStorage    = "storage"
	FeatureScreenSize = "screen_size"
	FeatureWeight     = "weight"
	FeatureColor      = "color"
	FeatureBrand      = "brand"
	FeatureCategory   = "category"
)

var nameStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
}

// brandAliases maps known alternative spellings to the canonical brand
var brandAliases = map[string]string{
	"apple inc":             "apple",
	"apple computer":        "apple",
	"samsung electronics":   "samsung",
	"microsoft corp":        "microsoft",
	"microsoft corporation": "microsoft",
	"alphabet inc":          "google",
	"google llc":            "google",
}

// Normalizer canonicalizes product names and scores product similarity
type Normalizer struct {
	logger zerolog.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With().Str("component", "normalizer").Logger(),
	}
}

// NormalizeName lowercases, replaces punctuation with spaces, collapses
// whitespace and drops stop words
func NormalizeName(name string) string {
	normalized := punctuationRegex.ReplaceAllString(strings.ToLower(name), " ")

	words := strings.Fields(normalized)
	kept := words[:0]
	for _, w := range words {
		if !nameStopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// CanonicalBrand resolves brand aliases, e.g. "Apple Inc" -> "apple"
func CanonicalBrand(brand string) string {
	b := whitespaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(brand)), " ")
	b = strings.TrimSuffix(b, ".")
	if canonical, ok := brandAliases[b]; ok {
		return canonical
	}
	return b
}

// ExtractFeatures pulls storage, screen size, weight and color out of the
// product's name and description, plus canonical brand and category
func ExtractFeatures(p domain.ProductInfo) map[string]string {
	features := make(map[string]string)
	text := strings.ToLower(p.Description + " " + p.Name)

	if m := storagePattern.FindStringSubmatch(text); m != nil {
		features[FeatureStorage] = m[1] + m[2]
	}
	if m := screenPattern.FindStringSubmatch(text); m != nil {
		features[FeatureScreenSize] = m[1] + "in"
	}
	for _, m := range weightPattern.FindAllStringSubmatch(text, -1) {
		unit := m[2]
		if unit == "g" && networkGenerations[m[1]] {
			continue
		}
		if unit == "lbs" {
			unit = "lb"
		}
		features[FeatureWeight] = m[1] + unit
		break
	}
	if m := colorPattern.FindStringSubmatch(text); m != nil {
		color := m[1]
		if color == "grey" {
			color = "gray"
		}
		features[FeatureColor] = color
	}
	if p.Brand != "" {
		features[FeatureBrand] = CanonicalBrand(p.Brand)
	}
	if p.Category != "" {
		features[FeatureCategory] = strings.ToLower(strings.TrimSpace(p.Category))
	}

	return features
}

// Similarity scores how alike two products are, in [0,1].
// It blends normalized-name ratio, feature agreement and raw text ratio.
// When neither product has any feature, the feature weight is spread over
// the other two signals so identical products still score 1.
func (n *Normalizer) Similarity(a, b domain.ProductInfo) float64 {
	nameSim := stringRatio(NormalizeName(a.Name), NormalizeName(b.Name))
	textSim := stringRatio(productText(a), productText(b))

	var score float64
	featureSim, ok := featureSimilarity(ExtractFeatures(a), ExtractFeatures(b))
	if ok {
		score = nameSim*nameWeight + featureSim*featureWeight + textSim*textWeight
	} else {
		score = (nameSim*nameWeight + textSim*textWeight) / (nameWeight + textWeight)
	}

	score = clamp01(score)

	n.logger.Debug().
		Str("a", a.Name).
		Str("b", b.Name).
		Float64("name", nameSim).
		Float64("features", featureSim).
		Float64("text", textSim).
		Float64("score", score).
		Msg("similarity")

	return score
}

// NormalizeOffers returns copies of the offers with normalized product names
func (n *Normalizer) NormalizeOffers(offers []domain.Offer) []domain.Offer {
	normalized := make([]domain.Offer, len(offers))
	for i, o := range offers {
		o.Product.Name = NormalizeName(o.Product.Name)
		normalized[i] = o
	}
	return normalized
}

// featureSimilarity averages per-key agreement over the union of keys.
// The second return is false when the union is empty.
func featureSimilarity(f1, f2 map[string]string) (float64, bool) {
	keys := make(map[string]bool, len(f1)+len(f2))
	for k := range f1 {
		keys[k] = true
	}
	for k := range f2 {
		keys[k] = true
	}
	if len(keys) == 0 {
		return 0, false
	}

	var total float64
	for k := range keys {
		v1, ok1 := f1[k]
		v2, ok2 := f2[k]
		if !ok1 || !ok2 {
			continue
		}
		if v1 == v2 {
			total += 1.0
		} else {
			total += stringRatio(v1, v2) * partialCredit
		}
	}

	return total / float64(len(keys)), true
}

func productText(p domain.ProductInfo) string {
	return strings.ToLower(p.Name + " " + p.Brand + " " + p.Description)
}

// stringRatio turns edit distance into a similarity in [0,1]
func stringRatio(s1, s2 string) float64 {
	l1, l2 := len([]rune(s1)), len([]rune(s2))
	longest := max(l1, l2)
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(s1, s2))/float64(longest)
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
