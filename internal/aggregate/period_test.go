package aggregate

import (
	"testing"
	"time"
)

func TestTimeOfDay(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{7, Morning},
		{12, Morning},
		{13, UnknownTOD},
		{14, Afternoon},
		{20, Afternoon},
		{21, Night},
		{23, Night},
		{0, Night},
		{6, Night},
	}
	for _, c := range cases {
		if got := TimeOfDay(c.hour); got != c.want {
			t.Errorf("TimeOfDay(%d) = %q, want %q", c.hour, got, c.want)
		}
	}
}

func TestKeyFor(t *testing.T) {
	// 2024-01-01 is a Monday in ISO week 1 of 2024.
	ts := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)

	if got := ByDay.KeyFor(ts); got != (Key{Year: 2024, Month: 1, Day: 1}) {
		t.Errorf("ByDay key = %+v", got)
	}
	if got := ByWeek.KeyFor(ts); got != (Key{Year: 2024, Week: 1}) {
		t.Errorf("ByWeek key = %+v", got)
	}
	if got := ByMonth.KeyFor(ts); got != (Key{Year: 2024, Month: 1}) {
		t.Errorf("ByMonth key = %+v", got)
	}
	if got := ByQuarter.KeyFor(ts); got != (Key{Year: 2024, Quarter: 1}) {
		t.Errorf("ByQuarter key = %+v", got)
	}
	if got := ByTimeOfDay.KeyFor(ts); got != (Key{TimeOfDay: Afternoon}) {
		t.Errorf("ByTimeOfDay key = %+v", got)
	}
	if got := Overall.KeyFor(ts); got != (Key{}) {
		t.Errorf("Overall key = %+v", got)
	}

	// ISO week of 2023-01-01 (a Sunday) belongs to week 52 of 2022.
	sunday := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ByWeek.KeyFor(sunday); got != (Key{Year: 2022, Week: 52}) {
		t.Errorf("ByWeek key for 2023-01-01 = %+v, want 2022/W52", got)
	}

	october := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)
	if got := ByQuarter.KeyFor(october); got.Quarter != 4 {
		t.Errorf("quarter of October = %d, want 4", got.Quarter)
	}
}

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in   string
		want Period
	}{
		{"day", ByDay},
		{"week", ByWeek},
		{"month", ByMonth},
		{"quarter", ByQuarter},
		{"time-of-day", ByTimeOfDay},
		{"TIMEOFDAY", ByTimeOfDay},
		{"overall", Overall},
		{"", ByMonth},
		{"bogus", ByMonth},
	}
	for _, c := range cases {
		if got := ParsePeriod(c.in, ByMonth); got != c.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestKeyLess(t *testing.T) {
	earlier := Key{Year: 2024, Month: 1, Day: 5}
	later := Key{Year: 2024, Month: 2, Day: 1}
	if !earlier.Less(later) {
		t.Error("january key should sort before february key")
	}
	if later.Less(earlier) {
		t.Error("february key should not sort before january key")
	}
}
