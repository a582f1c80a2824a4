package extract

import (
	"regexp"
	"strings"
)

var (
	disallowedNameChars = regexp.MustCompile(`[^\p{L}\p{N}\s()\[\]&\-]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// CleanName strips characters outside a conservative allow-list and collapses whitespace
func CleanName(text string) string {
	cleaned := disallowedNameChars.ReplaceAllString(text, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
