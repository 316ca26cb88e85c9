package detect

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopmirror/shopmirror/internal/currency"
	"github.com/shopmirror/shopmirror/internal/dom"
)

// relatedAreaPatterns are class/id substrings marking recommendation
// carousels and other regions that must never be mistaken for the primary
// product.
var relatedAreaPatterns = []string{
	"recommend", "related", "similar", "you-might", "you-may",
	"carousel", "slider", "swiper", "gallery",
	"also-like", "popular", "trending", "bestseller",
	"recently-viewed", "customers-also", "complete-look",
}

// relatedHeadingPhrases mark the same regions by their visible headings.
var relatedHeadingPhrases = []string{
	"you might", "you may also", "recommended", "similar", "complete the look",
}

// navWords are exact-match strings that are navigation chrome, never titles.
var navWords = map[string]bool{
	"menu": true, "home": true, "shop": true, "cart": true, "checkout": true,
	"search": true, "account": true, "sign in": true, "log in": true,
}

// badgePhrases are curated marketing labels that masquerade as headings.
var badgePhrases = []string{
	"sustainable materials", "eco-friendly", "new arrival", "best seller",
	"limited edition", "exclusive", "member", "free shipping",
}

// actionPhrases mark purchase-flow controls and option pickers.
var actionPhrases = []string{"add to", "buy now", "select", "choose"}

// cartTexts are the exact labels of an add-to-cart control.
var cartTexts = map[string]bool{
	"add to cart": true, "add to bag": true, "buy now": true, "add to basket": true,
}

var (
	garmentRe    = regexp.MustCompile(`(?i)\b(men's|women's|unisex|kids|shirt|jacket|pants|dress|sweater|hoodie|coat|jeans|shorts|half-zip|full-zip|pullover|cardigan|vest|blazer|skirt|top|tee|winterized)\b`)
	decimalRe    = regexp.MustCompile(`\d+[.,]\d{2}`)
	breadcrumbRe = regexp.MustCompile(`^\w+\s*/\s*\w+`)
	labelRe      = regexp.MustCompile(`^[A-Z][a-z]+:`)
	hasDigitRe   = regexp.MustCompile(`\d`)
)

// containsPriceText reports whether the string carries something that reads
// as a price: a recognized currency pattern or a bare decimal amount.
func containsPriceText(text string) bool {
	if _, ok := currency.Detect(text); ok {
		return true
	}
	return decimalRe.MatchString(text)
}

// isRelatedArea classifies a container as recommendations/noise by its
// class/id substrings or by a related-products heading inside it.
func isRelatedArea(s *goquery.Selection) bool {
	classID := dom.ClassAndID(s)
	for _, pattern := range relatedAreaPatterns {
		if strings.Contains(classID, pattern) {
			return true
		}
	}

	related := false
	s.Find(`h2, h3, h4, [class*="heading"], [class*="title"]`).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.ToLower(dom.Text(h))
		for _, phrase := range relatedHeadingPhrases {
			if strings.Contains(text, phrase) {
				related = true
				return false
			}
		}
		return true
	})
	return related
}

// isValidProductName applies the candidate-title validity predicate: sane
// length, no embedded price, not navigation chrome, not a breadcrumb, not a
// shouty badge, not a "Label:" prefix, not a curated marketing phrase.
func isValidProductName(text string) bool {
	if text == "" {
		return false
	}
	if len(text) < nameMinLen || len(text) > nameMaxLen {
		return false
	}
	if containsPriceText(text) {
		return false
	}

	lower := strings.ToLower(text)
	if navWords[lower] {
		return false
	}
	if breadcrumbRe.MatchString(text) || strings.Contains(text, " > ") {
		return false
	}
	if len(text) < nameBadgeCapsLen && text == strings.ToUpper(text) && !hasDigitRe.MatchString(text) {
		return false
	}
	if labelRe.MatchString(text) {
		return false
	}
	for _, phrase := range badgePhrases {
		if lower == phrase || lower == strings.ReplaceAll(phrase, " ", "") {
			return false
		}
	}
	return true
}

// isActionText reports whether the string belongs to a purchase control.
func isActionText(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range actionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// findCartControl locates a visible add-to-cart/bag/buy control, first by
// attribute patterns, then by exact button label.
func findCartControl(p *dom.Page) *goquery.Selection {
	selectors := []string{
		`button[class*="add-to-cart"]`,
		`button[class*="add-to-bag"]`,
		`button[id*="add-to-cart"]`,
		`button[id*="add-to-bag"]`,
		`[data-testid*="add-to-cart"]`,
		`[data-testid*="add-to-bag"]`,
	}

	for _, sel := range selectors {
		var found *goquery.Selection
		p.Doc.Find(sel).EachWithBreak(func(_ int, b *goquery.Selection) bool {
			if !p.Visible(b) {
				return true
			}
			text := strings.ToLower(dom.Text(b))
			if strings.Contains(text, "add") || strings.Contains(text, "cart") ||
				strings.Contains(text, "bag") || strings.Contains(text, "buy") {
				found = b
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}

	var found *goquery.Selection
	p.Doc.Find("button").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if !p.Visible(b) {
			return true
		}
		if cartTexts[strings.ToLower(dom.Text(b))] {
			found = b
			return false
		}
		return true
	})
	return found
}

// priceOnly reports whether a string is nothing but a price: once currency
// symbols, digits, separators and whitespace are stripped, nothing remains.
func priceOnly(text string) bool {
	if text == "" || !hasDigitRe.MatchString(text) {
		return false
	}
	stripped := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return -1
		case r == '.' || r == ',' || r == ' ' || r == '\'' || r == '-' || r == '/':
			return -1
		}
		return r
	}, text)
	stripped = currency.StripMarkers(stripped)
	return strings.TrimSpace(stripped) == ""
}
