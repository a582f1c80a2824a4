package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContainerStrategy locates product containers in a parsed page.
// It returns false when it finds nothing.
type ContainerStrategy func(doc *goquery.Document) (*goquery.Selection, bool)

// CSS is a container strategy backed by a single CSS selector
func CSS(selector string) ContainerStrategy {
	return func(doc *goquery.Document) (*goquery.Selection, bool) {
		sel := doc.Find(selector)
		return sel, sel.Length() > 0
	}
}

// FieldSelectors lists, per field, the selectors tried in order inside one container
type FieldSelectors struct {
	Name         []string
	Price        []string
	URL          []string
	Availability []string
	Image        []string
}

// selectContainers applies the strategies in order; the first that matches wins
func selectContainers(doc *goquery.Document, strategies []ContainerStrategy) (*goquery.Selection, bool) {
	for _, strategy := range strategies {
		if sel, ok := strategy(doc); ok {
			return sel, true
		}
	}
	return nil, false
}

// firstText returns the text of the first selector that yields a value accepted by keep
func firstText(s *goquery.Selection, selectors []string, keep func(string) bool) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(s.Find(selector).First().Text())
		if text != "" && keep(text) {
			return text
		}
	}
	return ""
}

// firstAttr returns the first non-empty attribute among selectors.
// An empty selector means the container itself.
func firstAttr(s *goquery.Selection, selectors []string, attrs ...string) string {
	for _, selector := range selectors {
		target := s
		if selector != "" {
			target = s.Find(selector).First()
		}
		for _, attr := range attrs {
			if v, ok := target.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}
