package consultation

import (
	"math"
	"sort"

	"github.com/healthtime/healthtime/internal/aggregate"
)

// PathwayStats summarizes one side (oncological or not) of the gap report.
type PathwayStats struct {
	AverageWait float64 `json:"averageWait"`
	Records     int     `json:"records"`
}

// OncologyGapRow is one hospital's oncological vs non-oncological waiting
// comparison.
type OncologyGapRow struct {
	HospitalID     int          `json:"hospitalId"`
	Hospital       string       `json:"hospital"`
	Oncological    PathwayStats `json:"oncological"`
	NonOncological PathwayStats `json:"nonOncological"`
	Gap            float64      `json:"gap"`
}

// OncologyGap splits each hospital's records into oncological and
// non-oncological pathways and reports the absolute difference of their
// average waits, widest gap first. A hospital missing one side reports 0
// for it.
func OncologyGap(records []*Record) []OncologyGapRow {
	type acc struct {
		name    string
		onco    aggregate.Mean
		nonOnco aggregate.Mean
	}

	groups := make(map[int]*acc)
	for _, r := range records {
		g, ok := groups[r.HospitalID]
		if !ok {
			g = &acc{name: r.HospitalName}
			groups[r.HospitalID] = g
		}
		if r.IsOncological() {
			g.onco.Add(r.MeanWait())
		} else {
			g.nonOnco.Add(r.MeanWait())
		}
	}

	rows := make([]OncologyGapRow, 0, len(groups))
	for id, g := range groups {
		onco := aggregate.Round2(g.onco.Value())
		nonOnco := aggregate.Round2(g.nonOnco.Value())
		rows = append(rows, OncologyGapRow{
			HospitalID:     id,
			Hospital:       g.name,
			Oncological:    PathwayStats{AverageWait: onco, Records: g.onco.Count()},
			NonOncological: PathwayStats{AverageWait: nonOnco, Records: g.nonOnco.Count()},
			Gap:            aggregate.Round2(math.Abs(onco - nonOnco)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gap != rows[j].Gap {
			return rows[i].Gap > rows[j].Gap
		}
		return rows[i].HospitalID < rows[j].HospitalID
	})
	return rows
}
