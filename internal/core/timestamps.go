package core

import (
	"fmt"
	"strings"
	"time"
)

// Remote timestamps may come back without an offset (timestamp columns).
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// NowMillis returns t as epoch milliseconds.
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// MillisToISO formats epoch milliseconds as an ISO-8601 offset datetime in UTC.
func MillisToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

// ISOToMillis parses an ISO-8601 datetime into epoch milliseconds. Values
// without an offset are taken as UTC. An empty string yields zero.
func ISOToMillis(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("parse timestamp %q: unsupported format", s)
}
