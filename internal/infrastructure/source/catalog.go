package source

import (
	"fmt"
	"net/url"
	"strings"
)

// Definition describes how to search, parse and fall back for one retailer
type Definition struct {
	Name            string
	BaseURL         string // site origin, e.g. https://www.amazon.com
	SearchPath      string // path and query with one %s for the escaped search terms
	FallbackBaseURL string
	Currency        string
	Category        string
	Prior           float64 // similarity assigned at parse time
	Containers      []ContainerStrategy
	Fields          FieldSelectors
	Fallback        []FallbackOffer
}

// SearchURL builds the search page URL for a query
func (d *Definition) SearchURL(query string) string {
	return strings.TrimSuffix(d.BaseURL, "/") + fmt.Sprintf(d.SearchPath, url.QueryEscape(query))
}

// Domain returns the host of the source, used to pick its politeness delay
func (d *Definition) Domain() string {
	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// DefaultDefinitions returns the built-in retailers. Selector lists are ordered
// from the current markup to older layouts.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:            "Amazon",
			BaseURL:         "https://www.amazon.com",
			SearchPath:      "/s?k=%s",
			FallbackBaseURL: "https://amazon.com",
			Currency:        "USD",
			Category:        "Electronics",
			Prior:           0.85,
			Containers: []ContainerStrategy{
				CSS(`[data-component-type="s-search-result"]`),
				CSS(`.s-result-item[data-asin]`),
				CSS(`.s-widget-container`),
			},
			Fields: FieldSelectors{
				Name:         []string{"h2 a span", "h2 span", ".a-size-medium", ".a-size-base-plus"},
				Price:        []string{".a-price .a-offscreen", ".a-price-whole", ".a-color-price"},
				URL:          []string{"h2 a", "a.a-link-normal"},
				Availability: []string{".a-color-success", ".a-size-base.a-color-secondary"},
				Image:        []string{"img.s-image"},
			},
			Fallback: []FallbackOffer{{Price: 99.99, ProductPath: "/product/123", Category: "Electronics"}},
		},
		{
			Name:            "eBay",
			BaseURL:         "https://www.ebay.com",
			SearchPath:      "/sch/i.html?_nkw=%s",
			FallbackBaseURL: "https://ebay.com",
			Currency:        "USD",
			Category:        "Electronics",
			Prior:           0.80,
			Containers: []ContainerStrategy{
				CSS(`li.s-card`),
				CSS(`.s-item`),
				CSS(`.srp-results li`),
			},
			Fields: FieldSelectors{
				Name:         []string{".s-card__title", ".s-item__title", "h3"},
				Price:        []string{".s-card__price", ".s-item__price"},
				URL:          []string{"a.su-link", "a.s-item__link", "a"},
				Availability: []string{".s-item__availability", ".s-item__hotness"},
				Image:        []string{".s-item__image-img", "img"},
			},
			Fallback: []FallbackOffer{{Price: 89.99, ProductPath: "/product/456", Category: "Electronics"}},
		},
		genericStore("BestBuy", "https://www.bestbuy.com", "/site/searchpage.jsp?st=%s",
			[]ContainerStrategy{
				CSS(`li.sku-item`),
				CSS(`.shop-sku-list-item`),
				CSS(`.product-list-item`),
			},
			FieldSelectors{
				Name:         []string{".sku-title a", "h4.sku-header a", ".sku-title"},
				Price:        []string{".priceView-customer-price span", ".priceView-hero-price span"},
				URL:          []string{".sku-title a", "h4.sku-header a"},
				Availability: []string{".fulfillment-add-to-cart-button button", ".fulfillment-fulfillment-summary"},
				Image:        []string{"img.product-image"},
			}),
		genericStore("Walmart", "https://www.walmart.com", "/search?q=%s",
			[]ContainerStrategy{
				CSS(`[data-item-id]`),
				CSS(`[data-testid="list-view"]`),
				CSS(`.search-result-gridview-item`),
			},
			FieldSelectors{
				Name:         []string{`[data-automation-id="product-title"]`, "span.lh-title", ".product-title-link span"},
				Price:        []string{`[data-automation-id="product-price"] .f2`, `[data-automation-id="product-price"]`, ".price-main .visuallyhidden"},
				URL:          []string{"a[link-identifier]", "a"},
				Availability: []string{`[data-automation-id="fulfillment-badge"]`, ".prod-ProductOffer-oosMsg"},
				Image:        []string{`img[data-testid="productTileImage"]`, "img"},
			}),
		genericStore("Target", "https://www.target.com", "/s?searchTerm=%s",
			[]ContainerStrategy{
				CSS(`[data-test="@web/site-top-of-funnel/ProductCardWrapper"]`),
				CSS(`[data-test="product-card"]`),
				CSS(`li[data-test="list-entry-product-card"]`),
			},
			FieldSelectors{
				Name:         []string{`a[data-test="product-title"]`, `[data-test="product-title"]`},
				Price:        []string{`[data-test="current-price"] span`, `[data-test="current-price"]`},
				URL:          []string{`a[data-test="product-title"]`, "a"},
				Availability: []string{`[data-test="outOfStockMessage"]`, `[data-test="fulfillment-cell-shipping"]`},
				Image:        []string{"picture img", "img"},
			}),
	}
}

// genericStore fills in the shared defaults of the smaller retailers
func genericStore(name, baseURL, searchPath string, containers []ContainerStrategy, fields FieldSelectors) Definition {
	return Definition{
		Name:            name,
		BaseURL:         baseURL,
		SearchPath:      searchPath,
		FallbackBaseURL: "https://" + strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".com",
		Currency:        "USD",
		Category:        "General",
		Prior:           0.75,
		Containers:      containers,
		Fields:          fields,
		Fallback:        []FallbackOffer{{Price: 79.99, ProductPath: "/product/789", Category: "General"}},
	}
}
