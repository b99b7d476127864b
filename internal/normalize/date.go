package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
	"20060102150405",
	"20060102",
}

// earliestEpoch bounds numeric timestamps from below; the upper bound is a year from now.
var earliestEpoch = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseDate interprets v as a posting date. Strings are tried against the known
// layouts (day-first for slashed dates); numbers are Unix epoch seconds, or
// milliseconds when large enough. Epochs outside 1990..now+1y are rejected.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case float64:
		return fromEpoch(int64(t))
	case int64:
		return fromEpoch(t)
	case int:
		return fromEpoch(int64(t))
	case string:
		return parseDateString(strings.TrimSpace(t))
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	if isoDatePrefix.MatchString(s) {
		if d, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return d, true
		}
	}
	// bare years and short numbers are not timestamps
	if len(s) >= 9 {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(n)
		}
	}
	return time.Time{}, false
}

func fromEpoch(n int64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	var t time.Time
	if n > 1e12 {
		t = time.UnixMilli(n).UTC()
	} else {
		t = time.Unix(n, 0).UTC()
	}
	if t.Before(earliestEpoch) || t.After(time.Now().AddDate(1, 0, 0)) {
		return time.Time{}, false
	}
	return t, true
}
