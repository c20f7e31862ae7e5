package stats

import (
	"testing"

	"github.com/healthtime/healthtime/internal/domain/consultation"
	"github.com/healthtime/healthtime/internal/domain/surgery"
)

func consultationRecord(hospitalID int, speciality string, wait float64) *consultation.Record {
	return &consultation.Record{
		HospitalID:       hospitalID,
		HospitalName:     "Hospital A",
		Speciality:       speciality,
		WaitNormal:       wait,
		WaitPriority:     wait,
		WaitHighPriority: wait,
		Year:             2024,
		Month:            "Maio",
		Week:             20,
		Day:              15,
	}
}

func surgeryRecord(hospitalID int, speciality string, wait float64) *surgery.Record {
	return &surgery.Record{
		HospitalID:         hospitalID,
		HospitalName:       "Hospital A",
		Speciality:         speciality,
		WaitingListType:    surgery.ListGeneral,
		AverageWaitingTime: wait,
		Year:               2024,
		Month:              "Maio",
		Week:               20,
		Day:                15,
	}
}

func TestDiscrepancy(t *testing.T) {
	consultations := []*consultation.Record{
		consultationRecord(1, "Ortopedia", 40),
		consultationRecord(1, "Ortopedia", 60),
	}
	surgeries := []*surgery.Record{
		surgeryRecord(1, "Ortopedia", 120),
	}

	rows := Discrepancy(consultations, surgeries, ByMonth)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Period != "Maio" || row.Year != 2024 {
		t.Errorf("period = %q/%d, want Maio/2024", row.Period, row.Year)
	}
	if row.Consultation.AverageWait != 50 || row.Consultation.Records != 2 {
		t.Errorf("consultation side = %+v, want mean 50 over 2 records", row.Consultation)
	}
	if row.Surgery.AverageWait != 120 {
		t.Errorf("surgery side = %+v, want 120", row.Surgery)
	}
	if row.AbsoluteDifference != 70 {
		t.Errorf("absolute difference = %v, want 70", row.AbsoluteDifference)
	}
	// (120-50)/50 * 100 = 140
	if row.PercentageDifference != 140 {
		t.Errorf("percentage difference = %v, want 140", row.PercentageDifference)
	}
}

func TestDiscrepancyMissingConsultationBaseline(t *testing.T) {
	surgeries := []*surgery.Record{surgeryRecord(1, "Urologia", 90)}

	rows := Discrepancy(nil, surgeries, ByMonth)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Consultation.Records != 0 || row.Consultation.AverageWait != 0 {
		t.Errorf("consultation side = %+v, want zeros", row.Consultation)
	}
	if row.AbsoluteDifference != 90 {
		t.Errorf("absolute difference = %v, want 90", row.AbsoluteDifference)
	}
	if row.PercentageDifference != 0 {
		t.Errorf("percentage difference = %v, want 0 without a consultation baseline", row.PercentageDifference)
	}
}

func TestDiscrepancyGroupings(t *testing.T) {
	consultations := []*consultation.Record{consultationRecord(1, "Ortopedia", 30)}

	if rows := Discrepancy(consultations, nil, ByWeek); rows[0].Period != "W20" {
		t.Errorf("weekly period = %q, want W20", rows[0].Period)
	}
	if rows := Discrepancy(consultations, nil, ByDay); rows[0].Period != "Maio 15" {
		t.Errorf("daily period = %q, want 'Maio 15'", rows[0].Period)
	}
}

func TestDiscrepancySortsByHospitalAndSpeciality(t *testing.T) {
	consultations := []*consultation.Record{
		consultationRecord(2, "Urologia", 10),
		consultationRecord(1, "Urologia", 10),
		consultationRecord(1, "Ortopedia", 10),
	}

	rows := Discrepancy(consultations, nil, ByMonth)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].HospitalID != 1 || rows[0].Speciality != "Ortopedia" {
		t.Errorf("first row = %+v", rows[0])
	}
	if rows[2].HospitalID != 2 {
		t.Errorf("last row = %+v, want hospital 2", rows[2])
	}
}

func TestParseGrouping(t *testing.T) {
	cases := []struct {
		in   string
		want Grouping
		ok   bool
	}{
		{"", ByMonth, true},
		{"month", ByMonth, true},
		{"week", ByWeek, true},
		{"day", ByDay, true},
		{"year", ByMonth, false},
	}
	for _, c := range cases {
		got, ok := ParseGrouping(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseGrouping(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
