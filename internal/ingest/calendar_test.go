package ingest

import "testing"

func TestMonthIndex(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"janeiro", 1, true},
		{"Janeiro", 1, true},
		{"DEZEMBRO", 12, true},
		{" março ", 3, true},
		{"marco", 3, true},
		{"agosto", 8, true},
		{"january", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := MonthIndex(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("MonthIndex(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestQuarter(t *testing.T) {
	cases := map[int]int{1: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 12: 4}
	for month, want := range cases {
		if got := Quarter(month); got != want {
			t.Errorf("Quarter(%d) = %d, want %d", month, got, want)
		}
	}
}

func TestISOWeek(t *testing.T) {
	if got := ISOWeek(2024, 1, 1); got != 1 {
		t.Errorf("ISOWeek(2024, 1, 1) = %d, want 1", got)
	}
	// 2023-01-01 falls in ISO week 52 of 2022.
	if got := ISOWeek(2023, 1, 1); got != 52 {
		t.Errorf("ISOWeek(2023, 1, 1) = %d, want 52", got)
	}
}
