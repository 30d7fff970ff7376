package main

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSelection turns a 1-based list such as "1,3-5" into 0-based indices
// in the order given. Duplicates are dropped.
func ParseSelection(spec string, count int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty selection")
	}

	seen := make(map[int]bool)
	var indices []int
	add := func(n int) error {
		if n < 1 || n > count {
			return fmt.Errorf("item %d out of range 1-%d", n, count)
		}
		if !seen[n] {
			seen[n] = true
			indices = append(indices, n-1)
		}
		return nil
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid selection %q", part)
			}
			if end < start {
				return nil, fmt.Errorf("invalid range %q", part)
			}
		}

		for n := start; n <= end; n++ {
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("empty selection")
	}
	return indices, nil
}
