package currency

import "regexp"

// recognitionOrder fixes the enumeration order for pattern matching. Prefixed
// dollar variants (R$, C$, A$) come before USD so a bare "$" pattern never
// claims them, and JPY comes before CNY so an unqualified "¥" reads as yen.
var recognitionOrder = []Code{
	BRL, CAD, AUD, USD, GBP, EUR, CHF, SEK, JPY, CNY, KRW, INR, VND, IDR,
}

// patterns lists, per currency, the regular expressions tried against a raw
// price-bearing string: symbol-prefixed, symbol-suffixed, ISO-code-suffixed,
// and locale-specific word forms. Within a currency the list order is the
// trial order; across currencies recognitionOrder governs.
var patterns = map[Code][]*regexp.Regexp{
	BRL: {
		regexp.MustCompile(`R\$\s*\d`),
		regexp.MustCompile(`\d\s*BRL\b`),
		regexp.MustCompile(`(?i)\d\s*reais\b`),
	},
	CAD: {
		regexp.MustCompile(`C\$\s*\d`),
		regexp.MustCompile(`CA\$\s*\d`),
		regexp.MustCompile(`\d\s*CAD\b`),
	},
	AUD: {
		regexp.MustCompile(`A\$\s*\d`),
		regexp.MustCompile(`AU\$\s*\d`),
		regexp.MustCompile(`\d\s*AUD\b`),
	},
	USD: {
		regexp.MustCompile(`US\$\s*\d`),
		regexp.MustCompile(`\$\s*\d`),
		regexp.MustCompile(`\d\s*USD\b`),
	},
	GBP: {
		regexp.MustCompile(`£\s*\d`),
		regexp.MustCompile(`\d\s*GBP\b`),
		regexp.MustCompile(`(?i)\d\s*pounds?\b`),
	},
	EUR: {
		regexp.MustCompile(`€\s*\d`),
		regexp.MustCompile(`\d\s*€`),
		regexp.MustCompile(`\d\s*EUR\b`),
		regexp.MustCompile(`(?i)\d\s*euros?\b`),
	},
	CHF: {
		regexp.MustCompile(`CHF\s*\d`),
		regexp.MustCompile(`\d\s*CHF\b`),
		regexp.MustCompile(`\bFr\.\s*\d`),
	},
	SEK: {
		regexp.MustCompile(`(?i)\d\s*kr\b`),
		regexp.MustCompile(`(?i)kr\s*\d`),
		regexp.MustCompile(`\d\s*SEK\b`),
	},
	JPY: {
		regexp.MustCompile(`¥\s*\d`),
		regexp.MustCompile(`￥\s*\d`),
		regexp.MustCompile(`\d\s*円`),
		regexp.MustCompile(`\d\s*JPY\b`),
	},
	CNY: {
		regexp.MustCompile(`CN¥\s*\d`),
		regexp.MustCompile(`\d\s*元`),
		regexp.MustCompile(`\bRMB\b`),
		regexp.MustCompile(`\d\s*CNY\b`),
	},
	KRW: {
		regexp.MustCompile(`₩\s*\d`),
		regexp.MustCompile(`\d\s*원`),
		regexp.MustCompile(`\d\s*KRW\b`),
	},
	INR: {
		regexp.MustCompile(`₹\s*\d`),
		regexp.MustCompile(`\bRs\.?\s*\d`),
		regexp.MustCompile(`\d\s*INR\b`),
	},
	VND: {
		regexp.MustCompile(`₫\s*\d`),
		regexp.MustCompile(`\d\s*₫`),
		regexp.MustCompile(`\d\s*VND\b`),
	},
	IDR: {
		regexp.MustCompile(`\bRp\.?\s*\d`),
		regexp.MustCompile(`\d\s*Rp\b`),
		regexp.MustCompile(`\d\s*IDR\b`),
	},
}

// Detect scans a raw string against the pattern table and returns the first
// currency whose patterns match. The enumeration order is fixed so detection
// is deterministic for ambiguous inputs.
func Detect(text string) (Code, bool) {
	if text == "" {
		return "", false
	}
	for _, code := range recognitionOrder {
		for _, re := range patterns[code] {
			if re.MatchString(text) {
				return code, true
			}
		}
	}
	return "", false
}

// Matches reports whether the string contains a price in the given currency.
// Field extractors use this to test a specific currency without re-running
// the whole table.
func Matches(text string, code Code) bool {
	for _, re := range patterns[code] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
