package utils

import (
	"strconv"
	"strings"
)

// ParseQueryList handles both repeated and comma-separated query params.
// Empty items are dropped.
// Example:
//
//	?division=Pune,Satara   → ["Pune","Satara"]
//	?division=Pune&division=Satara  → ["Pune","Satara"]
func ParseQueryList(q map[string][]string, key string) []string {
	values := q[key]

	if len(values) == 0 {
		return nil
	}

	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParseIntParam reads a positive integer query param, falling back to def
// when it is missing or invalid. max caps the value when > 0.
func ParseIntParam(q map[string][]string, key string, def, max int) int {
	values := q[key]
	if len(values) == 0 {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
