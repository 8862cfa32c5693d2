package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(GB|MB|TB|KB)`)

// ParseSize extracts a numeric size and unit from text like "1.83 GB".
// The unit is returned upper-cased, or empty when no size is present.
func ParseSize(text string) (float64, string) {
	m := sizePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, ""
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, ""
	}
	return value, strings.ToUpper(m[2])
}

// ToMegabytes converts a size value with unit to megabytes. Unknown or
// empty units pass the value through unchanged.
func ToMegabytes(value float64, unit string) float64 {
	switch unit {
	case "TB":
		return value * 1024 * 1024
	case "GB":
		return value * 1024
	case "KB":
		return value / 1024
	}
	return value
}

// TotalMegabytes sums every advertised size found in text.
func TotalMegabytes(text string) float64 {
	var total float64
	for _, m := range sizePattern.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += ToMegabytes(value, strings.ToUpper(m[2]))
	}
	return total
}
