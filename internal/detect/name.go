package detect

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopmirror/shopmirror/internal/dom"
)

// extractName picks the best product title within the located area. Headings
// win outright; otherwise a scored search runs over title-bearing attributes.
func extractName(p *dom.Page, area *goquery.Selection, logger *slog.Logger) string {
	// First valid h1 wins. A short heading without a garment noun is usually
	// a brand or collection mark, so try to append a qualifying subtitle.
	var headingName string
	area.Find("h1").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !p.Visible(h) {
			return true
		}
		text := dom.Text(h)
		if !isValidProductName(text) {
			return true
		}

		if len(text) < nameShortLen && !garmentRe.MatchString(text) {
			if subtitle := findSubtitle(p, h); subtitle != "" {
				headingName = text + " " + subtitle
				return false
			}
		}
		headingName = text
		return false
	})
	if headingName != "" {
		logger.Debug("name from heading", "name", headingName)
		return headingName
	}

	type candidate struct {
		text  string
		score float64
	}
	var best *candidate

	consider := func(text string, score float64) {
		// Strictly greater keeps the first-seen candidate on ties.
		if best == nil || score > best.score {
			best = &candidate{text: text, score: score}
		}
	}

	// Test-id carrying elements, including typography markers some sites use
	// for their main title.
	area.Find(`[data-testid*="product"], [data-testid*="title"], [data-testid*="name"], [data-testid*="Typography"], [data-testid*="typography"]`).
		Each(func(_ int, el *goquery.Selection) {
			if !p.Visible(el) {
				return
			}
			text := dom.Text(el)
			if !isValidProductName(text) {
				return
			}

			m := p.Metrics(el)
			score := m.FontSize/(m.Top+1) + nameTestIDBonus
			if isTypographyMarker(el) && m.FontSize >= nameTypographyMinFont {
				score += nameTypographyBonus
			}
			consider(text, score)
		})

	// Product-title class elements.
	area.Find(`[class*="product-title"], [class*="product-name"], [class*="ProductTitle"], [class*="ProductName"]`).
		Each(func(_ int, el *goquery.Selection) {
			if !p.Visible(el) {
				return
			}
			text := dom.Text(el)
			if !isValidProductName(text) {
				return
			}

			m := p.Metrics(el)
			consider(text, m.FontSize/(m.Top+1)+nameClassBonus)
		})

	if best != nil {
		logger.Debug("name from scored search", "name", best.text, "score", best.score)
		return best.text
	}

	logger.Debug("no product name found")
	return NameNotFound
}

func isTypographyMarker(el *goquery.Selection) bool {
	testID, _ := el.Attr("data-testid")
	return strings.Contains(strings.ToLower(testID), "typography")
}

// findSubtitle searches siblings and nearby descriptive elements for a
// qualifying subtitle: garment-noun text that is neither a price nor an
// action phrase.
func findSubtitle(p *dom.Page, title *goquery.Selection) string {
	next := title.Next()
	candidates := []*goquery.Selection{
		next,
		next.Next(),
		title.Parent().Find(`[class*="subtitle"]`).First(),
		title.Parent().Find(`[class*="description"]`).First(),
		title.Parent().Find("p").First(),
		title.Parent().Find("h2").First(),
	}

	for _, el := range candidates {
		if el == nil || len(el.Nodes) == 0 || !p.Visible(el) {
			continue
		}

		text := dom.Text(el)
		if len(text) < subtitleMinLen || len(text) > subtitleMaxLen {
			continue
		}
		if containsPriceText(text) || isActionText(text) {
			continue
		}
		if garmentRe.MatchString(text) {
			return text
		}
	}
	return ""
}
