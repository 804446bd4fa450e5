// Package util holds small pure helpers shared across the app.
package util

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// FormatNumber renders n with comma thousands separators.
func FormatNumber(n int64) string {
	// Negate in uint64 space so math.MinInt64 keeps its magnitude
	sign := ""
	u := uint64(n)
	if n < 0 {
		sign = "-"
		u = -u
	}

	s := fmt.Sprintf("%d", u)
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// HexToRGB parses a "#rrggbb" or "rrggbb" color into its channels.
func HexToRGB(hex string) (r, g, b uint8, err error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", hex)
	}

	var rv, gv, bv uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", hex)
	}
	return rv, gv, bv, nil
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ExtractUTM pulls the utm_* campaign parameters out of query values.
// Returns nil when none are present.
func ExtractUTM(values url.Values) map[string]string {
	var utm map[string]string
	for key := range values {
		if !strings.HasPrefix(key, "utm_") {
			continue
		}
		v := values.Get(key)
		if v == "" {
			continue
		}
		if utm == nil {
			utm = make(map[string]string)
		}
		utm[key] = v
	}
	return utm
}
