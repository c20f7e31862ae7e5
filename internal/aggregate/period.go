package aggregate

import (
	"strings"
	"time"
)

// Period selects the grouping granularity of a report. It is a closed set:
// every variant carries its own key-extraction rule, so callers never build
// grouping keys out of loose strings.
type Period int

const (
	Overall Period = iota
	ByDay
	ByWeek
	ByMonth
	ByQuarter
	ByTimeOfDay
)

// ParsePeriod maps a query-string value to a Period, falling back to the
// given default for empty or unknown values.
func ParsePeriod(s string, fallback Period) Period {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return ByDay
	case "week":
		return ByWeek
	case "month":
		return ByMonth
	case "quarter":
		return ByQuarter
	case "time-of-day", "timeofday":
		return ByTimeOfDay
	case "overall":
		return Overall
	default:
		return fallback
	}
}

// Key is a grouping key extracted from a timestamp. Only the fields relevant
// to the originating Period are populated; the rest stay zero and are dropped
// from JSON.
type Key struct {
	Year      int    `json:"year,omitempty"`
	Month     int    `json:"month,omitempty"`
	Day       int    `json:"day,omitempty"`
	Week      int    `json:"week,omitempty"`
	Quarter   int    `json:"quarter,omitempty"`
	TimeOfDay string `json:"timeOfDay,omitempty"`
}

// KeyFor extracts the grouping key for a timestamp under this period.
func (p Period) KeyFor(t time.Time) Key {
	switch p {
	case ByDay:
		return Key{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	case ByWeek:
		y, w := t.ISOWeek()
		return Key{Year: y, Week: w}
	case ByMonth:
		return Key{Year: t.Year(), Month: int(t.Month())}
	case ByQuarter:
		return Key{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}
	case ByTimeOfDay:
		return Key{TimeOfDay: TimeOfDay(t.Hour())}
	default:
		return Key{}
	}
}

// Less orders keys chronologically (time-of-day keys lexically).
func (a Key) Less(b Key) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Quarter != b.Quarter {
		return a.Quarter < b.Quarter
	}
	if a.Week != b.Week {
		return a.Week < b.Week
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	return a.TimeOfDay < b.TimeOfDay
}

// Time-of-day band names.
const (
	Morning    = "morning"
	Afternoon  = "afternoon"
	Night      = "night"
	UnknownTOD = "unknown"
)

// TimeOfDay maps an hour to its band. The bands mirror the source data
// convention: 07-12 morning, 14-20 afternoon, 21-06 night; the 13:00 hour
// falls in none of them.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 7 && hour < 13:
		return Morning
	case hour >= 14 && hour < 21:
		return Afternoon
	case hour >= 21 || hour < 7:
		return Night
	default:
		return UnknownTOD
	}
}
