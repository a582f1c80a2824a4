package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pricehunt/backend/internal/domain"
	"github.com/pricehunt/backend/internal/infrastructure/source"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockOfferSource is a mock implementation of domain.OfferSource
type MockOfferSource struct {
	name     string
	offers   []domain.Offer
	err      error
	panicMsg string
	delay    time.Duration
	calls    atomic.Int32
	lastTerm atomic.Value
}

func NewMockOfferSource(name string, offers ...domain.Offer) *MockOfferSource {
	return &MockOfferSource{name: name, offers: offers}
}

func (m *MockOfferSource) Name() string {
	return m.name
}

func (m *MockOfferSource) Search(ctx context.Context, query string) ([]domain.Offer, error) {
	m.calls.Add(1)
	m.lastTerm.Store(query)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.offers, nil
}

func TestBuildSearchQuery(t *testing.T) {
	testCases := []struct {
		name  string
		query domain.ProductInfo
		want  string
	}{
		{"name and brand", domain.ProductInfo{Name: "iPhone 15", Brand: "Apple"}, "iPhone 15 Apple"},
		{"name only", domain.ProductInfo{Name: "iPhone 15"}, "iPhone 15"},
		{"brand only", domain.ProductInfo{Brand: "Apple"}, "Apple"},
		{"neither", domain.ProductInfo{Description: "a phone"}, "product"},
		{"whitespace only", domain.ProductInfo{Name: "  ", Brand: " "}, "product"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildSearchQuery(tc.query))
		})
	}
}

func TestScrapeAll_ConcatenatesInSourceOrder(t *testing.T) {
	slow := NewMockOfferSource("slow", testOffer("slow item", "slow", 10))
	slow.delay = 50 * time.Millisecond
	fast := NewMockOfferSource("fast", testOffer("fast item", "fast", 20), testOffer("fast item 2", "fast", 30))

	agg := NewAggregator([]domain.OfferSource{slow, fast}, zerolog.Nop())
	offers := agg.ScrapeAll(context.Background(), domain.ProductInfo{Name: "item", Brand: "Acme"})

	require.Len(t, offers, 3)
	assert.Equal(t, "slow item", offers[0].Product.Name)
	assert.Equal(t, "fast item", offers[1].Product.Name)
	assert.Equal(t, "fast item 2", offers[2].Product.Name)
	assert.Equal(t, "item Acme", slow.lastTerm.Load())
	assert.Equal(t, []string{"slow", "fast"}, agg.SourceNames())
}

func TestScrapeAll_ToleratesFailingSources(t *testing.T) {
	healthy := NewMockOfferSource("healthy", testOffer("ok", "healthy", 10))
	failing := NewMockOfferSource("failing")
	failing.err = errors.New("boom")
	panicking := NewMockOfferSource("panicking")
	panicking.panicMsg = "nil map write"

	agg := NewAggregator([]domain.OfferSource{failing, panicking, healthy}, zerolog.Nop())
	offers := agg.ScrapeAll(context.Background(), domain.ProductInfo{Name: "ok"})

	require.Len(t, offers, 1)
	assert.Equal(t, "ok", offers[0].Product.Name)
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), panicking.calls.Load())
	assert.Equal(t, int32(1), healthy.calls.Load())
}

func TestScrapeAll_NoSources(t *testing.T) {
	agg := NewAggregator(nil, zerolog.Nop())
	assert.Empty(t, agg.ScrapeAll(context.Background(), domain.ProductInfo{Name: "x"}))
}

func TestScrapeAll_DisabledUsesFallbacks(t *testing.T) {
	sources := source.NewSources(source.DefaultDefinitions(), source.ClientConfig{Enabled: false}, 10, zerolog.Nop())
	agg := NewAggregator(sources, zerolog.Nop())

	offers := agg.ScrapeAll(context.Background(), domain.ProductInfo{Name: "iPhone 15", Brand: "Apple"})

	require.Len(t, offers, 5)
	want := []struct {
		name  string
		price float64
		url   string
	}{
		{"Amazon: iPhone 15 Apple", 99.99, "https://amazon.com/product/123"},
		{"eBay: iPhone 15 Apple", 89.99, "https://ebay.com/product/456"},
		{"BestBuy: iPhone 15 Apple", 79.99, "https://bestbuy.com/product/789"},
		{"Walmart: iPhone 15 Apple", 79.99, "https://walmart.com/product/789"},
		{"Target: iPhone 15 Apple", 79.99, "https://target.com/product/789"},
	}
	for i, w := range want {
		assert.Equal(t, w.name, offers[i].Product.Name)
		assert.Equal(t, w.price, offers[i].Quote.Price)
		assert.Equal(t, w.url, offers[i].Quote.URL)
	}
	assert.Len(t, FilterValid(offers), 5)
}

const scenarioPage = `<html><body><div class="results">
  <div class="product">
    <h2><a href="/item/1">Apple iPhone 15</a></h2>
    <span class="price">$%.2f</span>
  </div>
</div></body></html>`

func scenarioDefinition(name, baseURL string) source.Definition {
	return source.Definition{
		Name:            name,
		BaseURL:         baseURL,
		SearchPath:      "/search?q=%s",
		FallbackBaseURL: "https://" + name + ".example.com",
		Currency:        "USD",
		Category:        "Electronics",
		Prior:           0.8,
		Containers:      []source.ContainerStrategy{source.CSS(".results .product")},
		Fields: source.FieldSelectors{
			Name:  []string{"h2"},
			Price: []string{".price"},
			URL:   []string{"h2 a"},
		},
		Fallback: []source.FallbackOffer{{Price: 42.5, ProductPath: "/product/1", Category: "General"}},
	}
}

func newScenarioSources(t *testing.T, prices []float64, failing int) ([]domain.OfferSource, *atomic.Int32) {
	t.Helper()

	cfg := source.ClientConfig{Enabled: true, MaxRetries: 3, Timeout: 2 * time.Second}
	failedAttempts := &atomic.Int32{}

	var sources []domain.OfferSource
	for i, price := range prices {
		var handler http.HandlerFunc
		if i == failing {
			handler = func(w http.ResponseWriter, r *http.Request) {
				failedAttempts.Add(1)
				w.WriteHeader(http.StatusBadGateway)
			}
		} else {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, scenarioPage, price)
			}
		}
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)

		def := scenarioDefinition(fmt.Sprintf("shop%d", i), server.URL)
		client := source.NewClient(def.Domain(), cfg, zerolog.Nop())
		sources = append(sources, source.New(def, client, 10, zerolog.Nop()))
	}
	return sources, failedAttempts
}

func TestScrapeAll_FailedSourceFallsBack(t *testing.T) {
	prices := []float64{99.99, 89.99, 79.99, 99.99, 109.99}
	sources, failedAttempts := newScenarioSources(t, prices, 1)

	agg := NewAggregator(sources, zerolog.Nop())
	offers := agg.ScrapeAll(context.Background(), domain.ProductInfo{Name: "iPhone 15"})

	require.Len(t, offers, 5)
	assert.Equal(t, int32(3), failedAttempts.Load())

	fallback := offers[1]
	assert.Equal(t, "shop1: iPhone 15", fallback.Product.Name)
	assert.Equal(t, 42.5, fallback.Quote.Price)
	assert.Equal(t, "https://shop1.example.com/product/1", fallback.Quote.URL)

	for _, i := range []int{0, 2, 3, 4} {
		assert.Equal(t, "Apple iPhone 15", offers[i].Product.Name)
		assert.Equal(t, prices[i], offers[i].Quote.Price)
		assert.Equal(t, fmt.Sprintf("shop%d", i), offers[i].Quote.Source)
	}
}

func TestFilterValid(t *testing.T) {
	good := testOffer("good", "shop", 10)

	zeroPrice := testOffer("zero", "shop", 0)
	negative := testOffer("negative", "shop", -5)
	relative := testOffer("relative", "shop", 10)
	relative.Quote.URL = "/item/1"
	noScheme := testOffer("no scheme", "shop", 10)
	noScheme.Quote.URL = "shop.example.com/item"
	noName := testOffer("   ", "shop", 10)

	got := FilterValid([]domain.Offer{zeroPrice, good, negative, relative, noScheme, noName})

	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Product.Name)
	assert.NotNil(t, FilterValid(nil))
}
