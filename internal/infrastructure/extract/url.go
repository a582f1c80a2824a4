package extract

import (
	"net/url"
	"strings"
)

// ResolveURL turns a link found on a page into an absolute URL.
// Absolute links are returned unchanged, rooted links are joined to the
// origin of base, anything else is resolved relative to base.
func ResolveURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	ref, err := url.Parse(path)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return path
	}

	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return ""
	}

	return baseURL.ResolveReference(ref).String()
}

// IsAbsoluteURL reports whether raw is a scheme-qualified http(s) URL with a host
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
