package normalize

import (
	"math"
	"strconv"
	"strings"
)

var hourSuffixes = []string{"hours", "hour", "hrs", "hr", "heures", "heure", "horas", "stunden", "std", "h"}

// Hours parses a non-negative number of hours. Both "," and "." are accepted
// as decimal separator; a trailing unit such as "h" or "hrs" is ignored.
func Hours(s string) *float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range hourSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	v, ok := parseDecimal(s)
	if !ok || v < 0 {
		return nil
	}
	return &v
}

// Progress parses a percentage, clamped to [0, 100] and rounded. A trailing
// "%" is ignored; non-numeric input is 0.
func Progress(s string) int {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, ok := parseDecimal(s)
	if !ok {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// parseDecimal reads a plain decimal number written with either separator.
// When both appear, the first one is the thousands separator.
func parseDecimal(s string) (float64, bool) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma < dot:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != '.' && r != '-' && r != '+' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
