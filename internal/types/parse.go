package types

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order when a date column holds text.
// Slash dates are read day first; a month-first export must set its own
// layouts.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// ParseDate parses a textual date with the first matching layout.
// A nil or empty layouts slice selects DefaultDateLayouts.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber converts the raw text of a cell the workbook stores as a
// number. Text that does not parse is kept as it is.
func ParseNumber(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Kind: KindEmpty}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberValue(n)
	}
	return StringValue(trimmed)
}
