package usecase

import (
	"math"
	"testing"

	"github.com/pricehunt/backend/internal/domain"
	"github.com/rs/zerolog"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and strips punctuation", "The Apple iPhone 15, 128GB!", "apple iphone 15 128gb"},
		{"drops stop words", "Case for the Phone with Stand", "case phone stand"},
		{"collapses whitespace", "  Galaxy   S24  ", "galaxy s24"},
		{"hyphen becomes space", "Wi-Fi Router", "wi fi router"},
		{"empty", "", ""},
		{"only stop words", "the and of", ""},
		{"keeps accented letters", "Pokémon Scarlet", "pokémon scarlet"},
		{"keeps non-latin letters", "Sony α7 IV", "sony α7 iv"},
		{"accents with punctuation", "Nestlé Crème-Brûlée!", "nestlé crème brûlée"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeName(tc.input)
			if got != tc.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCanonicalBrand(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"Apple Inc.", "apple"},
		{"apple computer", "apple"},
		{"Samsung Electronics", "samsung"},
		{"Microsoft Corporation", "microsoft"},
		{"Google LLC", "google"},
		{"Alphabet Inc", "google"},
		{"Sony", "sony"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := CanonicalBrand(tc.input)
			if got != tc.want {
				t.Errorf("CanonicalBrand(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestExtractFeatures(t *testing.T) {
	t.Run("phone with storage", func(t *testing.T) {
		f := ExtractFeatures(domain.ProductInfo{Name: "iPhone 15 Pro 256GB", Brand: "Apple Inc", Category: "Electronics"})
		want := map[string]string{
			FeatureStorage:  "256gb",
			FeatureBrand:    "apple",
			FeatureCategory: "electronics",
		}
		assertFeatures(t, f, want)
	})

	t.Run("tv with screen size and color", func(t *testing.T) {
		f := ExtractFeatures(domain.ProductInfo{Name: `Samsung 55" 4K TV Black`})
		want := map[string]string{
			FeatureScreenSize: "55in",
			FeatureColor:      "black",
		}
		assertFeatures(t, f, want)
	})

	t.Run("laptop with screen weight and color", func(t *testing.T) {
		f := ExtractFeatures(domain.ProductInfo{
			Name:        "MacBook Air",
			Description: "13.6 inch display, 2.7 lbs, Silver",
		})
		want := map[string]string{
			FeatureScreenSize: "13.6in",
			FeatureWeight:     "2.7lb",
			FeatureColor:      "silver",
		}
		assertFeatures(t, f, want)
	})

	t.Run("cellular generation is not a weight", func(t *testing.T) {
		f := ExtractFeatures(domain.ProductInfo{Name: "Galaxy S23 5G 128GB"})
		want := map[string]string{
			FeatureStorage: "128gb",
		}
		assertFeatures(t, f, want)
	})

	t.Run("weight after cellular generation", func(t *testing.T) {
		f := ExtractFeatures(domain.ProductInfo{Name: "Pixel 8 5G", Description: "weighs 187g"})
		if f[FeatureWeight] != "187g" {
			t.Errorf("weight = %q, want 187g", f[FeatureWeight])
		}
	})

	t.Run("grey is spelled gray", func(t *testing.T) {
		f := ExtractFeatures(domain.ProductInfo{Name: "Space Grey Case"})
		if f[FeatureColor] != "gray" {
			t.Errorf("color = %q, want gray", f[FeatureColor])
		}
	})

	t.Run("no features", func(t *testing.T) {
		f := ExtractFeatures(domain.ProductInfo{Name: "widget"})
		if len(f) != 0 {
			t.Errorf("features = %v, want none", f)
		}
	})
}

func assertFeatures(t *testing.T, got, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("features = %v, want %v", got, want)
		return
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("feature %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestFeatureSimilarity(t *testing.T) {
	t.Run("empty union reports no features", func(t *testing.T) {
		_, ok := featureSimilarity(map[string]string{}, map[string]string{})
		if ok {
			t.Error("expected ok = false for empty union")
		}
	})

	t.Run("averages over the union of keys", func(t *testing.T) {
		got, ok := featureSimilarity(
			map[string]string{FeatureStorage: "128gb"},
			map[string]string{FeatureStorage: "128gb", FeatureColor: "black"},
		)
		if !ok || math.Abs(got-0.5) > 1e-9 {
			t.Errorf("featureSimilarity = %v (ok=%v), want 0.5", got, ok)
		}
	})

	t.Run("differing values earn partial credit", func(t *testing.T) {
		got, _ := featureSimilarity(
			map[string]string{FeatureStorage: "128gb"},
			map[string]string{FeatureStorage: "256gb"},
		)
		// ratio("128gb", "256gb") = 1 - 3/5, halved
		if math.Abs(got-0.2) > 1e-9 {
			t.Errorf("featureSimilarity = %v, want 0.2", got)
		}
	})
}

func TestSimilarity(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())

	iphone := domain.ProductInfo{Name: "Apple iPhone 15 128GB", Brand: "Apple", Category: "Electronics", Description: "Smartphone"}

	t.Run("identical products score one", func(t *testing.T) {
		products := []domain.ProductInfo{
			iphone,
			{Name: "widget"},
			{Description: "only a description"},
			{},
		}
		for _, p := range products {
			got := n.Similarity(p, p)
			if math.Abs(got-1.0) > 1e-9 {
				t.Errorf("Similarity(%+v, itself) = %v, want 1", p, got)
			}
		}
	})

	t.Run("is symmetric", func(t *testing.T) {
		other := domain.ProductInfo{Name: "Samsung Galaxy S24 256GB", Brand: "Samsung", Category: "Electronics"}
		ab := n.Similarity(iphone, other)
		ba := n.Similarity(other, iphone)
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Similarity not symmetric: %v vs %v", ab, ba)
		}
	})

	t.Run("stays within bounds", func(t *testing.T) {
		pairs := [][2]domain.ProductInfo{
			{iphone, {}},
			{{Name: "a"}, {Name: "zzzzzzzzzzzzzzzzzzzz"}},
			{{Name: "!!!"}, {Name: "???"}},
		}
		for _, p := range pairs {
			got := n.Similarity(p[0], p[1])
			if got < 0 || got > 1 || math.IsNaN(got) {
				t.Errorf("Similarity(%q, %q) = %v, want within [0,1]", p[0].Name, p[1].Name, got)
			}
		}
	})

	t.Run("unrelated products score low", func(t *testing.T) {
		fridge := domain.ProductInfo{Name: "Samsung Galaxy Refrigerator", Brand: "Samsung", Category: "Appliances"}
		got := n.Similarity(iphone, fridge)
		if got >= 0.5 {
			t.Errorf("Similarity = %v, want < 0.5", got)
		}
	})

	t.Run("brand aliases count as the same brand", func(t *testing.T) {
		a := domain.ProductInfo{Name: "iPhone 15", Brand: "Apple Inc"}
		b := domain.ProductInfo{Name: "iPhone 15", Brand: "Apple"}
		c := domain.ProductInfo{Name: "iPhone 15", Brand: "Samsung"}

		aliased := n.Similarity(a, b)
		if aliased <= 0.9 {
			t.Errorf("Similarity with aliased brand = %v, want > 0.9", aliased)
		}
		if other := n.Similarity(a, c); other >= aliased {
			t.Errorf("different brand scored %v, want below aliased %v", other, aliased)
		}
	})
}

func TestNormalizeOffers(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	offers := []domain.Offer{
		{Product: domain.ProductInfo{Name: "The Apple iPhone 15!", Brand: "Apple"}},
		{Product: domain.ProductInfo{Name: "Galaxy S24"}},
	}

	got := n.NormalizeOffers(offers)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Product.Name != "apple iphone 15" {
		t.Errorf("Name = %q, want %q", got[0].Product.Name, "apple iphone 15")
	}
	if got[0].Product.Brand != "Apple" {
		t.Errorf("Brand = %q, want unchanged", got[0].Product.Brand)
	}
	if offers[0].Product.Name != "The Apple iPhone 15!" {
		t.Errorf("input offer was modified: %q", offers[0].Product.Name)
	}
}

func TestStringRatio(t *testing.T) {
	testCases := []struct {
		s1   string
		s2   string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "abc", 1.0},
		{"abc", "", 0.0},
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"café", "cafe", 0.75},
	}

	for _, tc := range testCases {
		t.Run(tc.s1+"_"+tc.s2, func(t *testing.T) {
			got := stringRatio(tc.s1, tc.s2)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("stringRatio(%q, %q) = %v, want %v", tc.s1, tc.s2, got, tc.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	testCases := []struct {
		s1   string
		s2   string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"abc", "abc", 0},
		{"abc", "abd", 1},        // substitution
		{"abc", "abcd", 1},       // insertion
		{"abcd", "abc", 1},       // deletion
		{"kitten", "sitting", 3}, // classic example
		{"128gb", "256gb", 3},
		{"iphone", "iphnoe", 2}, // transposition (2 edits)
	}

	for _, tc := range testCases {
		t.Run(tc.s1+"_"+tc.s2, func(t *testing.T) {
			got := levenshteinDistance(tc.s1, tc.s2)
			if got != tc.want {
				t.Errorf("levenshteinDistance(%q, %q) = %v, want %v", tc.s1, tc.s2, got, tc.want)
			}
		})
	}
}
