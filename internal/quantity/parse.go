// Package quantity converts Kubernetes resource quantity strings into
// canonical integer units and back into display strings.
//
// CPU and memory quantities must not be mixed: Parse treats a trailing "m"
// as a plain integer suffix while ParseCPU reads it as millicores.
package quantity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type suffix struct {
	text       string
	multiplier float64
}

// suffixes is checked in order; binary suffixes come first so "Mi" is never
// mistaken for a decimal suffix.
var suffixes = []suffix{
	{"Ki", 1 << 10},
	{"Mi", 1 << 20},
	{"Gi", 1 << 30},
	{"Ti", 1 << 40},
	{"Pi", 1 << 50},
	{"Ei", 1 << 60},
	{"K", 1e3},
	{"M", 1e6},
	{"G", 1e9},
	{"T", 1e12},
	{"P", 1e15},
	{"E", 1e18},
}

// Parse converts a memory or storage quantity ("128Mi", "1.5Gi", "4G",
// "1024") into bytes. A trailing "m" is stripped and the prefix returned as
// is, without any milli scaling. Empty input yields 0.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if prefix, ok := strings.CutSuffix(s, "m"); ok {
		n, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("quantity %q: %w", s, err)
		}
		return n, nil
	}

	for _, sf := range suffixes {
		prefix, ok := strings.CutSuffix(s, sf.text)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return 0, fmt.Errorf("quantity %q: %w", s, err)
		}
		return truncate(v * sf.multiplier), nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", s, err)
	}
	return n, nil
}

// ParseCPU converts a CPU quantity into millicores: "500m" -> 500,
// "0.5" -> 500, "2" -> 2000. Empty input yields 0.
func ParseCPU(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if prefix, ok := strings.CutSuffix(s, "m"); ok {
		v, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return 0, fmt.Errorf("cpu quantity %q: %w", s, err)
		}
		return truncate(v), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cpu quantity %q: %w", s, err)
	}
	return truncate(v * 1000), nil
}

// ParseCount parses an extended resource count such as a GPU request.
// Only plain integers are accepted. Empty input yields 0.
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", s, err)
	}
	return n, nil
}

// truncate drops the fractional part, saturating at the int64 range.
func truncate(v float64) int64 {
	switch {
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v)
}
