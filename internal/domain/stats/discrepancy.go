package stats

import (
	"sort"
	"strconv"

	"github.com/healthtime/healthtime/internal/aggregate"
	"github.com/healthtime/healthtime/internal/domain/consultation"
	"github.com/healthtime/healthtime/internal/domain/surgery"
)

// Grouping picks the period column the discrepancy rows are keyed by.
type Grouping int

const (
	ByMonth Grouping = iota
	ByWeek
	ByDay
)

// ParseGrouping maps a query-string value to a Grouping, defaulting to
// monthly.
func ParseGrouping(s string) (Grouping, bool) {
	switch s {
	case "", "month":
		return ByMonth, true
	case "week":
		return ByWeek, true
	case "day":
		return ByDay, true
	default:
		return ByMonth, false
	}
}

// SideStats summarizes one fact kind inside a discrepancy row.
type SideStats struct {
	AverageWait float64 `json:"averageWait"`
	Records     int     `json:"records"`
}

// DiscrepancyRow compares consultation and surgery waits for one hospital,
// speciality and period.
type DiscrepancyRow struct {
	HospitalID int    `json:"hospitalId"`
	Hospital   string `json:"hospital"`
	Speciality string `json:"speciality"`
	Year       int    `json:"year"`
	Period     string `json:"period"`

	Consultation SideStats `json:"consultation"`
	Surgery      SideStats `json:"surgery"`

	// AbsoluteDifference is surgery minus consultation average wait;
	// PercentageDifference expresses it relative to the consultation wait,
	// 0 when there is no consultation baseline.
	AbsoluteDifference   float64 `json:"absoluteDifference"`
	PercentageDifference float64 `json:"percentageDifference"`
}

// Discrepancy unions the two fact streams, groups them by hospital,
// speciality and period, and derives the absolute and relative gap between
// surgery and consultation waits. A group present in only one stream keeps a
// zero for the missing side.
func Discrepancy(consultations []*consultation.Record, surgeries []*surgery.Record, grouping Grouping) []DiscrepancyRow {
	type groupKey struct {
		hospitalID int
		speciality string
		year       int
		period     string
	}
	type acc struct {
		hospital     string
		consultation aggregate.Mean
		surgery      aggregate.Mean
	}

	periodOf := func(day, week int, month string) string {
		switch grouping {
		case ByDay:
			return month + " " + strconv.Itoa(day)
		case ByWeek:
			return "W" + strconv.Itoa(week)
		default:
			return month
		}
	}

	groups := make(map[groupKey]*acc)
	group := func(hospitalID int, hospital, speciality string, year int, period string) *acc {
		k := groupKey{hospitalID: hospitalID, speciality: speciality, year: year, period: period}
		g, ok := groups[k]
		if !ok {
			g = &acc{hospital: hospital}
			groups[k] = g
		}
		return g
	}

	for _, c := range consultations {
		g := group(c.HospitalID, c.HospitalName, c.Speciality, c.Year, periodOf(c.Day, c.Week, c.Month))
		g.consultation.Add(c.MeanWait())
	}
	for _, s := range surgeries {
		g := group(s.HospitalID, s.HospitalName, s.Speciality, s.Year, periodOf(s.Day, s.Week, s.Month))
		g.surgery.Add(s.AverageWaitingTime)
	}

	rows := make([]DiscrepancyRow, 0, len(groups))
	for k, g := range groups {
		consultationAvg := aggregate.Round2(g.consultation.Value())
		surgeryAvg := aggregate.Round2(g.surgery.Value())
		rows = append(rows, DiscrepancyRow{
			HospitalID:           k.hospitalID,
			Hospital:             g.hospital,
			Speciality:           k.speciality,
			Year:                 k.year,
			Period:               k.period,
			Consultation:         SideStats{AverageWait: consultationAvg, Records: g.consultation.Count()},
			Surgery:              SideStats{AverageWait: surgeryAvg, Records: g.surgery.Count()},
			AbsoluteDifference:   aggregate.Round2(surgeryAvg - consultationAvg),
			PercentageDifference: aggregate.Percent(surgeryAvg-consultationAvg, consultationAvg),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HospitalID != b.HospitalID {
			return a.HospitalID < b.HospitalID
		}
		if a.Speciality != b.Speciality {
			return a.Speciality < b.Speciality
		}
		return a.Period < b.Period
	})
	return rows
}
