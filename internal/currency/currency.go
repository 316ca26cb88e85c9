// Package currency provides table-driven recognition and locale-aware parsing
// of displayed retail prices. Recognition is best-effort: patterns are tried in
// a fixed enumeration order and the first match wins, with page-URL locale
// hints as a fallback and USD as the final default.
package currency

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Code identifies a supported currency.
type Code string

const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	KRW Code = "KRW"
	CNY Code = "CNY"
	INR Code = "INR"
	CAD Code = "CAD"
	AUD Code = "AUD"
	CHF Code = "CHF"
	SEK Code = "SEK"
	VND Code = "VND"
	IDR Code = "IDR"
	BRL Code = "BRL"
)

// Info declares how a currency is written: its display symbol, its separator
// convention, and the ceiling above which a parsed number is assumed to be
// something other than a retail price (product IDs, view counts).
type Info struct {
	Code Code
	// Symbol is the prefix used when formatting.
	Symbol string
	// ThousandsSep is the grouping separator: ".", ",", " " or "".
	ThousandsSep string
	// DecimalSep is "" for zero-decimal currencies.
	DecimalSep string
	// MaxPrice bounds plausible retail prices in this currency.
	MaxPrice float64
}

// ZeroDecimal reports whether the currency has no sub-unit in practice.
func (i Info) ZeroDecimal() bool { return i.DecimalSep == "" }

var table = map[Code]Info{
	USD: {Code: USD, Symbol: "$", ThousandsSep: ",", DecimalSep: ".", MaxPrice: 100000},
	EUR: {Code: EUR, Symbol: "€", ThousandsSep: ".", DecimalSep: ",", MaxPrice: 100000},
	GBP: {Code: GBP, Symbol: "£", ThousandsSep: ",", DecimalSep: ".", MaxPrice: 100000},
	JPY: {Code: JPY, Symbol: "¥", ThousandsSep: ",", DecimalSep: "", MaxPrice: 10000000},
	KRW: {Code: KRW, Symbol: "₩", ThousandsSep: ",", DecimalSep: "", MaxPrice: 50000000},
	CNY: {Code: CNY, Symbol: "¥", ThousandsSep: ",", DecimalSep: ".", MaxPrice: 500000},
	INR: {Code: INR, Symbol: "₹", ThousandsSep: ",", DecimalSep: ".", MaxPrice: 5000000},
	CAD: {Code: CAD, Symbol: "C$", ThousandsSep: ",", DecimalSep: ".", MaxPrice: 100000},
	AUD: {Code: AUD, Symbol: "A$", ThousandsSep: ",", DecimalSep: ".", MaxPrice: 100000},
	CHF: {Code: CHF, Symbol: "CHF ", ThousandsSep: " ", DecimalSep: ".", MaxPrice: 100000},
	SEK: {Code: SEK, Symbol: "kr ", ThousandsSep: " ", DecimalSep: ",", MaxPrice: 1000000},
	VND: {Code: VND, Symbol: "₫", ThousandsSep: ".", DecimalSep: "", MaxPrice: 1000000000},
	IDR: {Code: IDR, Symbol: "Rp ", ThousandsSep: ".", DecimalSep: "", MaxPrice: 1000000000},
	BRL: {Code: BRL, Symbol: "R$", ThousandsSep: ".", DecimalSep: ",", MaxPrice: 500000},
}

// Lookup returns the Info for a code, falling back to USD for unknown codes.
func Lookup(code Code) Info {
	if info, ok := table[code]; ok {
		return info
	}
	return table[USD]
}

// Codes returns the supported currency codes in recognition order.
func Codes() []Code {
	out := make([]Code, len(recognitionOrder))
	copy(out, recognitionOrder)
	return out
}

// localeHints maps URL path segments and country-code TLDs to currencies.
// Eurozone countries all map to EUR.
var localeHints = map[string]Code{
	"us": USD, "uk": GBP, "gb": GBP,
	"de": EUR, "fr": EUR, "it": EUR, "es": EUR, "nl": EUR, "at": EUR,
	"be": EUR, "fi": EUR, "ie": EUR, "pt": EUR, "gr": EUR,
	"jp": JPY, "kr": KRW, "cn": CNY, "in": INR,
	"ca": CAD, "au": AUD, "ch": CHF, "se": SEK,
	"vn": VND, "id": IDR, "br": BRL,
}

// FromURL infers a currency from locale hints in the page URL: first from
// path segments ("/jp/" implies JPY), then from the host's country-code TLD.
func FromURL(rawURL string) (Code, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	for _, seg := range strings.Split(u.Path, "/") {
		seg = strings.ToLower(seg)
		// Accept "jp" as well as "jp-en" / "en-jp" style segments.
		if code, ok := localeHints[seg]; ok {
			return code, true
		}
		if len(seg) == 5 && seg[2] == '-' {
			if code, ok := localeHints[seg[:2]]; ok {
				return code, true
			}
			if code, ok := localeHints[seg[3:]]; ok {
				return code, true
			}
		}
	}

	host := strings.ToLower(u.Hostname())
	if i := strings.LastIndex(host, "."); i >= 0 {
		if code, ok := localeHints[host[i+1:]]; ok {
			return code, true
		}
	}

	return "", false
}

// Resolve determines the currency for a price-bearing string, falling back to
// URL locale hints and finally USD. It never fails.
func Resolve(text, pageURL string) Code {
	if code, ok := Detect(text); ok {
		return code
	}
	if code, ok := FromURL(pageURL); ok {
		return code
	}
	return USD
}

// numberRun matches the numeric portion of a price string, including any
// grouping or decimal separators embedded between digits.
var numberRun = regexp.MustCompile(`[0-9](?:[0-9., ']*[0-9])?`)

// Parse extracts a numeric value from a price-bearing string using the
// currency's declared separator convention. It returns 0 when no plausible
// value is found; callers must treat 0 as "no valid price". Values outside
// (0, MaxPrice] are rejected the same way.
//
// Zero-decimal currencies truncate any sub-unit remainder: "299.000,50" in
// IDR parses as 299000 because the comma cannot introduce a valid subunit.
func Parse(text string, code Code) float64 {
	info := Lookup(code)

	run := numberRun.FindString(text)
	if run == "" {
		return 0
	}

	cleaned := run
	if info.ThousandsSep != "" {
		cleaned = strings.ReplaceAll(cleaned, info.ThousandsSep, "")
	}

	if info.ZeroDecimal() {
		// Anything after a stray separator is not a valid subunit.
		if i := strings.IndexFunc(cleaned, notDigit); i >= 0 {
			cleaned = cleaned[:i]
		}
	} else {
		if i := strings.LastIndex(cleaned, info.DecimalSep); i >= 0 {
			whole := strings.Map(keepDigits, cleaned[:i])
			frac := cleaned[i+len(info.DecimalSep):]
			if strings.IndexFunc(frac, notDigit) >= 0 {
				return 0
			}
			cleaned = whole + "." + frac
		} else if strings.IndexFunc(cleaned, notDigit) >= 0 {
			// A separator that is neither the grouping nor the decimal
			// convention for this currency makes the run untrustworthy.
			return 0
		}
	}

	if cleaned == "" || cleaned == "." {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	if value <= 0 || value > info.MaxPrice {
		return 0
	}

	return value
}

// Format renders a value using the currency's symbol and declared decimal
// separator, without grouping, so that Parse(Format(x, c), c) == x.
func Format(value float64, code Code) string {
	info := Lookup(code)

	if info.ZeroDecimal() {
		return fmt.Sprintf("%s%d", info.Symbol, int64(value+0.5))
	}

	formatted := strconv.FormatFloat(value, 'f', 2, 64)
	if info.DecimalSep != "." {
		formatted = strings.Replace(formatted, ".", info.DecimalSep, 1)
	}
	return info.Symbol + formatted
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}
