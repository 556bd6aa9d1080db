package rawfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Engineering-notation magnitude suffixes. SPICE values are case-insensitive,
// so "m" is always milli and mega must be spelled "meg".
var unitMap = map[string]float64{
	"t":   1e12,
	"g":   1e9,
	"meg": 1e6,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
	"mil": 25.4e-6,
}

var engineeringRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:e[-+]?\d+)?)(meg|mil|[tgkmunpf])?[a-z]*$`)

// ParseEngineering parses a SPICE engineering-notated value: a float with an
// optional magnitude suffix and optional trailing unit letters, e.g. "2k",
// "4.7meg", "10uF", "1e-9". Anything else is an error so callers can keep
// the raw text instead.
func ParseEngineering(s string) (float64, error) {
	m := engineeringRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("not an engineering-notated value: %q", s)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	if m[2] != "" {
		num *= unitMap[m[2]]
	}
	return num, nil
}
