package detect

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopmirror/shopmirror/internal/dom"
)

var bgImageRe = regexp.MustCompile(`url\(['"]?([^'"()]+)['"]?\)`)

// lazySrcAttrs are the data attributes lazy loaders stash real URLs in,
// tried after a real src.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original"}

// excludedURLHints flag logos, icons and placeholders that are never product
// photography.
var excludedURLHints = []string{"logo", "icon", "placeholder", "blank"}

// extractImages collects up to imageMax product image URLs, deduplicated by
// query-stripped URL. Three strategies run in order and the first one that
// produces anything short-circuits the rest: large <img> elements, <picture>
// sources, CSS background images.
func extractImages(p *dom.Page, area *goquery.Selection, logger *slog.Logger) []string {
	areas := []*goquery.Selection{area}

	// Some sites keep the media gallery outside the product info column.
	gallery := p.Doc.Find(`.media-gallery, [class*="media-gallery"], [class*="product-images"], [class*="image-gallery"]`).First()
	if len(gallery.Nodes) > 0 && !dom.Contains(area, gallery) {
		areas = append(areas, gallery)
	}

	seen := make(map[string]bool)
	var images []string

	add := func(url string) bool {
		if url == "" || strings.HasPrefix(url, "data:") {
			return len(images) >= imageMax
		}
		key, _, _ := strings.Cut(url, "?")
		if seen[key] {
			return len(images) >= imageMax
		}
		seen[key] = true
		images = append(images, url)
		return len(images) >= imageMax
	}

	// Strategy 1: img elements large enough to be product shots.
	for _, a := range areas {
		a.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			m := p.Metrics(img)
			if m.Width < imageMinSide || m.Height < imageMinSide {
				return true
			}

			url := imgSource(img)
			if url == "" || excludedImage(url, img) {
				return true
			}
			return !add(url)
		})
		if len(images) >= imageMax {
			break
		}
	}

	// Strategy 2: picture sources.
	if len(images) == 0 {
		area.Find("picture source, picture img").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			url := srcsetFirst(el)
			if url == "" {
				url, _ = el.Attr("src")
			}
			return !add(url)
		})
	}

	// Strategy 3: CSS background images on sufficiently large elements.
	if len(images) == 0 {
		area.Find(`[style*="background-image"], [class*="image"], [class*="product-img"]`).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			m := p.Metrics(el)
			if m.Width < imageMinSide || m.Height < imageMinSide {
				return true
			}
			style, _ := el.Attr("style")
			bg := m.Background
			if bg == "" {
				bg = style
			}
			if match := bgImageRe.FindStringSubmatch(bg); match != nil {
				return !add(match[1])
			}
			return true
		})
	}

	logger.Debug("images collected", "count", len(images))
	return images
}

// imgSource resolves the real image URL, falling through the lazy-load
// attributes when src is missing or a data URI.
func imgSource(img *goquery.Selection) string {
	if src, ok := img.Attr("src"); ok && src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	for _, attr := range lazySrcAttrs {
		if v, ok := img.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

func excludedImage(url string, img *goquery.Selection) bool {
	lower := strings.ToLower(url)
	for _, hint := range excludedURLHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	alt, _ := img.Attr("alt")
	return strings.Contains(strings.ToLower(alt), "logo")
}

// srcsetFirst returns the first URL of a srcset-style attribute.
func srcsetFirst(el *goquery.Selection) string {
	for _, attr := range []string{"srcset", "data-srcset"} {
		if v, ok := el.Attr(attr); ok && v != "" {
			fields := strings.Fields(v)
			if len(fields) > 0 {
				return strings.TrimSuffix(fields[0], ",")
			}
		}
	}
	return ""
}
