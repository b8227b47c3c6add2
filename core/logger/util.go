package logger

import (
	"strings"
	"time"
)

// Status is "ok" for a nil error and "error" otherwise.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}

// Took is the time since start rounded to milliseconds.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to milliseconds; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// SummarizeStrings joins at most limit values and reports how many were left out.
func SummarizeStrings(values []string, limit int) (preview string, omitted int) {
	limit = max(limit, 0)
	if len(values) <= limit {
		return strings.Join(values, ", "), 0
	}
	return strings.Join(values[:limit], ", "), len(values) - limit
}
