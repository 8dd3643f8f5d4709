package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// rainyPercentSeparator splits sub-period probabilities, e.g. "30/40".
const rainyPercentSeparator = "/"

// ParseNumber converts page text to a number the way JavaScript's Number()
// treats decimal text: whitespace is trimmed, an empty string yields 0,
// "Infinity" with an optional sign is infinite, and anything else that is not
// a decimal literal yields NaN. Hex, octal, and binary literals are not
// recognised and also yield NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// ParseFloat alone would also accept "inf", "NaN", hex floats, and
	// underscores.
	if strings.ContainsFunc(s, notDecimal) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// ParseFloat reports overflow with a usable ±Inf.
		if errors.Is(err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

func notDecimal(r rune) bool {
	return (r < '0' || r > '9') && !strings.ContainsRune("+-.eE", r)
}

// FormatNumber renders v the way the persisted schema expects (as JavaScript's
// Number.prototype.toString does for ordinary values): "25", "14.5", "NaN".
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		// covers negative zero
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseRainyPercent converts a rain probability token to a percentage.
//
// A plain token is parsed as is. A slash-delimited token is averaged and
// rounded to the nearest multiple of 10, half away from zero:
//
//	"30"    -> 30
//	"20/40" -> 30
//	"30/40" -> 40
//
// Empty and unparsable tokens yield 0.
func ParseRainyPercent(token string) int {
	if !strings.Contains(token, rainyPercentSeparator) {
		return percent(ParseNumber(token))
	}

	parts := strings.Split(token, rainyPercentSeparator)
	var sum float64
	for _, part := range parts {
		sum += ParseNumber(part)
	}
	mean := sum / float64(len(parts))
	return percent(math.Round(mean/10) * 10)
}

func percent(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}
