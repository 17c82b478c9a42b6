package services

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// 19.2267 N, 72.8777°W, -18.5
	decimalCoordinate = regexp.MustCompile(`(?i)^(-?\d+(?:\.\d+)?)\s*°?\s*([NSEW])?$`)
	// 19°06'05.9"N (the ° has been padded with a space before matching)
	dmsCoordinate = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)°\s*(\d+(?:\.\d+)?)\s*['′]\s*(\d+(?:\.\d+)?)\s*(?:"|″|'')\s*([NSEW])?$`)
)

// NormalizeCoordinate converts a latitude/longitude cell into a signed
// decimal-degree string. Empty input and zero yield nil. Values in no known
// notation are passed through trimmed.
func NormalizeCoordinate(v any) *string {
	out, _ := normalizeCoordinate(v)
	return out
}

// normalizeCoordinate also reports whether the value was in a recognised
// notation, so callers can warn about passthrough values.
func normalizeCoordinate(v any) (*string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case float64:
		if t == 0 {
			return nil, true
		}
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s, true
	case int:
		if t == 0 {
			return nil, true
		}
		s := strconv.Itoa(t)
		return &s, true
	}

	raw := strings.TrimSpace(cellString(v))
	if raw == "" {
		return nil, true
	}
	// an unset coordinate exported as 0
	if n, ok := cellNumber(raw); ok && n == 0 {
		return nil, true
	}

	s := strings.ReplaceAll(raw, ",", "")
	s = strings.ReplaceAll(s, "°", "° ")
	s = strings.TrimSpace(s)

	if m := decimalCoordinate.FindStringSubmatch(s); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if negativeHemisphere(m[2]) {
				f = -f
			}
			out := strconv.FormatFloat(f, 'f', -1, 64)
			return &out, true
		}
	}

	if m := dmsCoordinate.FindStringSubmatch(s); m != nil {
		deg, _ := strconv.ParseFloat(m[1], 64)
		minutes, _ := strconv.ParseFloat(m[2], 64)
		sec, _ := strconv.ParseFloat(m[3], 64)
		f := deg + minutes/60 + sec/3600
		if negativeHemisphere(m[4]) {
			f = -f
		}
		out := strconv.FormatFloat(f, 'f', -1, 64)
		return &out, true
	}

	return &raw, false
}

func negativeHemisphere(h string) bool {
	h = strings.ToUpper(h)
	return h == "S" || h == "W"
}
