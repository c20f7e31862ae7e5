package consultation

import "testing"

func record(hospitalID int, name, priority, speciality string, waits [3]float64) *Record {
	return &Record{
		HospitalID:          hospitalID,
		HospitalName:        name,
		WaitNormal:          waits[0],
		WaitPriority:        waits[1],
		WaitHighPriority:    waits[2],
		PriorityDescription: priority,
		Speciality:          speciality,
	}
}

func TestIsOncological(t *testing.T) {
	cases := []struct {
		priority   string
		speciality string
		want       bool
	}{
		{"Cirurgia Oncológica", "", true},
		{"cirurgia oncológica", "", true},
		{"", "Oncologia Médica", true},
		{"", "oncologia", true},
		{"Normal", "Cardiologia", false},
		{"", "", false},
	}
	for _, c := range cases {
		r := record(1, "H", c.priority, c.speciality, [3]float64{})
		if got := r.IsOncological(); got != c.want {
			t.Errorf("IsOncological(priority=%q, speciality=%q) = %v, want %v", c.priority, c.speciality, got, c.want)
		}
	}
}

func TestMeanWait(t *testing.T) {
	r := record(1, "H", "", "", [3]float64{30, 20, 10})
	if got := r.MeanWait(); got != 20 {
		t.Errorf("MeanWait() = %v, want 20", got)
	}
}

func TestOncologyGap(t *testing.T) {
	records := []*Record{
		record(1, "Hospital A", "Oncológica", "", [3]float64{90, 90, 90}),
		record(1, "Hospital A", "Normal", "Cardiologia", [3]float64{30, 30, 30}),
		record(2, "Hospital B", "Oncológica", "", [3]float64{50, 50, 50}),
		record(2, "Hospital B", "Normal", "Cardiologia", [3]float64{40, 40, 40}),
	}

	rows := OncologyGap(records)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Widest gap first: hospital A (90-30=60) before hospital B (50-40=10).
	if rows[0].HospitalID != 1 || rows[1].HospitalID != 2 {
		t.Fatalf("row order = %d, %d, want 1 then 2", rows[0].HospitalID, rows[1].HospitalID)
	}
	if rows[0].Gap != 60 {
		t.Errorf("hospital A gap = %v, want 60", rows[0].Gap)
	}
	if rows[0].Oncological.AverageWait != 90 || rows[0].NonOncological.AverageWait != 30 {
		t.Errorf("hospital A sides = %+v", rows[0])
	}
}

func TestOncologyGapOneSided(t *testing.T) {
	records := []*Record{
		record(1, "Hospital A", "Oncológica", "", [3]float64{60, 60, 60}),
	}

	rows := OncologyGap(records)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.NonOncological.AverageWait != 0 || row.NonOncological.Records != 0 {
		t.Errorf("missing side = %+v, want zeros", row.NonOncological)
	}
	if row.Gap != 60 {
		t.Errorf("gap = %v, want 60 (absolute difference against the zero side)", row.Gap)
	}
}
