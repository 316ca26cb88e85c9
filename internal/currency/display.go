package currency

import (
	"regexp"
	"strings"
)

// displayRe matches one displayed price token: a currency marker adjacent to
// a numeric run, either prefixed (symbol form) or suffixed (word/ISO form).
var displayRe = regexp.MustCompile(
	`(?:US\$|CA\$|AU\$|CN¥|R\$|C\$|A\$|CHF|Rp\.?|Rs\.?|kr|[$£€¥￥₩₹₫])\s*[0-9](?:[0-9., ']*[0-9])?` +
		`|[0-9](?:[0-9., ']*[0-9])?\s*(?:円|원|元|₫|€|kr\b|Rp\b|USD|EUR|GBP|JPY|KRW|CNY|INR|CAD|AUD|CHF|SEK|VND|IDR|BRL)`)

// markerRe matches currency symbols and word markers in isolation.
var markerRe = regexp.MustCompile(
	`(?i)US\$|CA\$|AU\$|CN¥|R\$|C\$|A\$|CHF|Rp\.?|Rs\.?|kr|円|원|元|RMB|USD|EUR|GBP|JPY|KRW|CNY|INR|CAD|AUD|SEK|VND|IDR|BRL|[$£€¥￥₩₹₫]`)

// FindDisplay returns the first displayed price token in the text, exactly as
// written, or "" when none is present. The semantic price extractor reports
// this literal substring as the detected price.
func FindDisplay(text string) string {
	return strings.TrimSpace(displayRe.FindString(text))
}

// CountDisplays counts distinct displayed price tokens in the text. Two or
// more in one container usually means a current price beside an original one.
func CountDisplays(text string) int {
	return len(displayRe.FindAllString(text, -1))
}

// StripMarkers removes currency symbols and word markers, leaving whatever
// else the string carried. A price-only string strips down to nothing.
func StripMarkers(s string) string {
	return markerRe.ReplaceAllString(s, "")
}
