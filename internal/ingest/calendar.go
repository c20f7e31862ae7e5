package ingest

import (
	"strings"
	"time"
)

// monthIndex maps the month names the reports are submitted with to their
// calendar number. The stored month stays as submitted; the index only feeds
// the derived week and quarter columns.
var monthIndex = map[string]int{
	"janeiro":   1,
	"fevereiro": 2,
	"março":     3,
	"marco":     3,
	"abril":     4,
	"maio":      5,
	"junho":     6,
	"julho":     7,
	"agosto":    8,
	"setembro":  9,
	"outubro":   10,
	"novembro":  11,
	"dezembro":  12,
}

// MonthIndex resolves a submitted month name case-insensitively.
func MonthIndex(name string) (int, bool) {
	m, ok := monthIndex[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Quarter returns the calendar quarter of a month number.
func Quarter(month int) int {
	return (month-1)/3 + 1
}

// ISOWeek returns the ISO-8601 week of a (year, month, day) date.
func ISOWeek(year, month, day int) int {
	_, week := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}
