package util

import (
	"strconv"
	"strings"
)

// ParseFloatDefault parses string to float64 or returns default if empty/invalid.
// Separators are not reinterpreted: "1,5" is invalid, not 15.
func ParseFloatDefault(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
