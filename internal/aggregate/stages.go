// Package aggregate is the in-process toolkit behind the analytical reports:
// grouping keys, null-safe accumulators, guarded arithmetic, and time
// bucketing. Each report composes these stages over rows the repositories
// have already match-filtered, so every stage is unit-testable on in-memory
// fixtures.
package aggregate

import (
	"math"
	"time"
)

// Round2 rounds to two decimal places, the precision every derived metric is
// reported at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SafeDivide returns num/den, or 0 when the denominator is 0. Division by
// zero in a report means "no data", never a fault.
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent returns part/total expressed as a percentage rounded to two
// decimals, 0 when the total is 0.
func Percent(part, total float64) float64 {
	return Round2(SafeDivide(part, total) * 100)
}

// Mean accumulates a null-safe average: absent inputs are added as 0 so one
// category's absence never poisons another's, and an empty mean is 0, not NaN.
type Mean struct {
	sum float64
	n   int
}

func (m *Mean) Add(v float64) {
	m.sum += v
	m.n++
}

func (m *Mean) Value() float64 {
	return SafeDivide(m.sum, float64(m.n))
}

func (m *Mean) Count() int { return m.n }

// FloorToQuarterHour floors a timestamp to the preceding 15-minute boundary.
func FloorToQuarterHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), (t.Minute()/15)*15, 0, 0, t.Location())
}
