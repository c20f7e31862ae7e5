package surgery

import (
	"sort"

	"github.com/healthtime/healthtime/internal/aggregate"
)

// ListStats summarizes one waiting list of a speciality.
type ListStats struct {
	AverageWait    float64 `json:"averageWait"`
	TotalSurgeries int     `json:"totalSurgeries"`
	TotalPatients  int     `json:"totalPatients"`
}

// ComparisonRow compares a speciality's general waiting list against its
// oncological one.
type ComparisonRow struct {
	Speciality  string    `json:"speciality"`
	General     ListStats `json:"general"`
	Oncological ListStats `json:"oncological"`
	Difference  float64   `json:"difference"`
}

// CompareLists groups records by speciality and derives general-vs-oncological
// list statistics. Specialities missing either list are dropped: the
// comparison needs both sides. Widest difference (general minus oncological)
// first.
func CompareLists(records []*Record) []ComparisonRow {
	type side struct {
		wait     aggregate.Mean
		patients int
	}
	type acc struct {
		general side
		onco    side
	}

	groups := make(map[string]*acc)
	for _, r := range records {
		g, ok := groups[r.Speciality]
		if !ok {
			g = &acc{}
			groups[r.Speciality] = g
		}
		switch r.WaitingListType {
		case ListGeneral:
			g.general.wait.Add(r.AverageWaitingTime)
			g.general.patients += r.NumberOfPeople
		case ListOncological:
			g.onco.wait.Add(r.AverageWaitingTime)
			g.onco.patients += r.NumberOfPeople
		}
	}

	rows := make([]ComparisonRow, 0, len(groups))
	for speciality, g := range groups {
		if g.general.wait.Count() == 0 || g.onco.wait.Count() == 0 {
			continue
		}
		general := aggregate.Round2(g.general.wait.Value())
		onco := aggregate.Round2(g.onco.wait.Value())
		rows = append(rows, ComparisonRow{
			Speciality: speciality,
			General: ListStats{
				AverageWait:    general,
				TotalSurgeries: g.general.wait.Count(),
				TotalPatients:  g.general.patients,
			},
			Oncological: ListStats{
				AverageWait:    onco,
				TotalSurgeries: g.onco.wait.Count(),
				TotalPatients:  g.onco.patients,
			},
			Difference: aggregate.Round2(general - onco),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Difference != rows[j].Difference {
			return rows[i].Difference > rows[j].Difference
		}
		return rows[i].Speciality < rows[j].Speciality
	})
	return rows
}
