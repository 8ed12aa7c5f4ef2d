package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random UUID string, used for correlation IDs and
// notification ID suffixes.
func GenerateUUID() string {
	return uuid.NewString()
}

// ProcessAllowedOrigins splits a comma separated origin list into trimmed
// entries, dropping empties.
func ProcessAllowedOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	processed := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			processed = append(processed, p)
		}
	}
	return processed
}

// FormatDuration renders a duration in whole seconds as "1h23m45s" with
// zero-padded minutes and seconds, the display format used for exam and
// test result times (3000 -> "0h50m00s").
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
}
