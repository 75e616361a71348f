package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d as "mm:ss" (or "h:mm:ss" past an hour), the display form
// used in track records. Negative durations render as "00:00".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ParseDuration parses a display duration such as "06:12" or "1:02:03".
// Track durations are advisory, so callers should treat a failure as "unknown".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty duration", ErrInvalidInput)
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
	}

	var total int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}
