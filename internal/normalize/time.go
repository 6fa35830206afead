package normalize

import (
	"database/sql"
	"strings"
	"time"
)

// ESPN emits several timestamp layouts, often without seconds.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
}

// ParseTime parses an ESPN timestamp. Empty or unparseable input reports false.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func timestamp(v any) sql.NullTime {
	s, ok := v.(string)
	if !ok {
		return sql.NullTime{}
	}
	t, ok := ParseTime(s)
	return sql.NullTime{Time: t, Valid: ok}
}
