package infrastructure

import (
	"regexp"
	"strconv"
)

var progressPattern = regexp.MustCompile(`\[download\]\s+([0-9.]+)%`)

// ParseProgress extracts the download percentage from a yt-dlp output line.
// The value is truncated and clamped to 0-100.
func ParseProgress(line string) (int, bool) {
	match := progressPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	percent := int(value)
	switch {
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}
	return percent, true
}
