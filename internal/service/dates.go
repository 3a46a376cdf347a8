package service

import (
	"strings"
	"time"
)

// dueDateLayouts are the ISO-8601 forms accepted for due dates.  Layouts
// without a zone are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDueDate parses s as an ISO-8601 timestamp and normalizes it to UTC at
// the store's microsecond precision.
func parseDueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Microsecond), true
		}
	}
	return time.Time{}, false
}
