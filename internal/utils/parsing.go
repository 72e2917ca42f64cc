package utils

import (
	"strconv"
	"strings"
)

// ParseSizeToBytes converts human-readable size strings to bytes
func ParseSizeToBytes(sizeStr string) int64 {
	if sizeStr == "" {
		return 0
	}

	// Remove spaces and convert to uppercase
	sizeStr = strings.ToUpper(strings.ReplaceAll(sizeStr, " ", ""))

	// Extract numeric part and unit
	var numStr strings.Builder
	var unit string

	for i, r := range sizeStr {
		if r >= '0' && r <= '9' || r == '.' {
			numStr.WriteRune(r)
		} else {
			unit = sizeStr[i:]
			break
		}
	}

	// Parse the numeric value
	value, err := strconv.ParseFloat(numStr.String(), 64)
	if err != nil {
		return 0
	}

	// Convert based on unit
	switch unit {
	case "B", "":
		return int64(value)
	case "KB", "K":
		return int64(value * 1024)
	case "MB", "M":
		return int64(value * 1024 * 1024)
	case "GB", "G":
		return int64(value * 1024 * 1024 * 1024)
	case "TB", "T":
		return int64(value * 1024 * 1024 * 1024 * 1024)
	case "PB", "P":
		return int64(value * 1024 * 1024 * 1024 * 1024 * 1024)
	default:
		return int64(value)
	}
}

// FormatBytes renders a byte count with a binary unit suffix
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
