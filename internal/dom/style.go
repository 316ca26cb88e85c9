package dom

import (
	"regexp"
	"strconv"
	"strings"
)

var rgbRe = regexp.MustCompile(`rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)

// ParseRGB extracts red/green/blue channels from a CSS color value. It
// understands rgb()/rgba() and 3- or 6-digit hex forms; anything else
// (named colors, hsl) reports !ok and the caller skips the check.
func ParseRGB(v string) (r, g, b int, ok bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, 0, 0, false
	}

	if m := rgbRe.FindStringSubmatch(v); m != nil {
		r, _ = strconv.Atoi(m[1])
		g, _ = strconv.Atoi(m[2])
		b, _ = strconv.Atoi(m[3])
		return r, g, b, true
	}

	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return 0, 0, 0, false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, 0, 0, false
		}
		return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff), true
	}

	return 0, 0, 0, false
}

// IsLineThrough reports whether a text-decoration value strikes the text out.
func IsLineThrough(decoration string) bool {
	return strings.Contains(strings.ToLower(decoration), "line-through")
}
