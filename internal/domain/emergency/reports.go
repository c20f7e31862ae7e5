package emergency

import (
	"sort"
	"time"

	"github.com/healthtime/healthtime/internal/aggregate"
	"github.com/healthtime/healthtime/internal/domain/reference"
)

// QueueAverages pivots the four urgency colors of the waiting-queue report.
// Blue (non-urgent) is excluded here: the published statistics cover the
// four urgent categories only.
type QueueAverages struct {
	Red    float64 `json:"red"`
	Orange float64 `json:"orange"`
	Yellow float64 `json:"yellow"`
	Green  float64 `json:"green"`
}

// AverageWaitRow is one (period, emergency type) group of the average-wait
// report: the average number of patients waiting in each urgency queue.
type AverageWaitRow struct {
	Period          aggregate.Key `json:"period"`
	TypeCode        string        `json:"typeCode"`
	TypeDescription string        `json:"typeDescription"`
	WaitingPatients QueueAverages `json:"waitingPatients"`
	Samples         int           `json:"samples"`
}

// AverageWaitByType groups snapshots by period and emergency typology and
// averages the queue length of each urgency color.
func AverageWaitByType(snapshots []*Snapshot, period aggregate.Period) []AverageWaitRow {
	type groupKey struct {
		period   aggregate.Key
		typeCode string
	}
	type acc struct {
		desc                       string
		red, orange, yellow, green aggregate.Mean
	}

	groups := make(map[groupKey]*acc)
	for _, s := range snapshots {
		k := groupKey{period: period.KeyFor(s.LastUpdate), typeCode: s.TypeCode}
		g, ok := groups[k]
		if !ok {
			g = &acc{desc: s.TypeDescription}
			groups[k] = g
		}
		g.red.Add(float64(s.Triage.Red.Length))
		g.orange.Add(float64(s.Triage.Orange.Length))
		g.yellow.Add(float64(s.Triage.Yellow.Length))
		g.green.Add(float64(s.Triage.Green.Length))
	}

	rows := make([]AverageWaitRow, 0, len(groups))
	for k, g := range groups {
		rows = append(rows, AverageWaitRow{
			Period:          k.period,
			TypeCode:        k.typeCode,
			TypeDescription: g.desc,
			WaitingPatients: QueueAverages{
				Red:    aggregate.Round2(g.red.Value()),
				Orange: aggregate.Round2(g.orange.Value()),
				Yellow: aggregate.Round2(g.yellow.Value()),
				Green:  aggregate.Round2(g.green.Value()),
			},
			Samples: g.red.Count(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period.Less(rows[j].Period)
		}
		return rows[i].TypeCode < rows[j].TypeCode
	})
	return rows
}

// ColorShares pivots all five triage colors, as averages or percentages.
type ColorShares struct {
	Red    float64 `json:"red"`
	Orange float64 `json:"orange"`
	Yellow float64 `json:"yellow"`
	Green  float64 `json:"green"`
	Blue   float64 `json:"blue"`
}

// TriageDistributionRow is one period group of the triage-percentages report:
// the average queue length per color and each color's share of the summed
// averages.
type TriageDistributionRow struct {
	Period      aggregate.Key `json:"period"`
	Patients    ColorShares   `json:"patients"`
	Total       float64       `json:"total"`
	Percentages ColorShares   `json:"percentages"`
	Samples     int           `json:"samples"`
}

// TriageDistribution groups snapshots by period and derives the percentage
// split of patients across triage colors. A group with no patients reports
// all-zero percentages rather than failing.
func TriageDistribution(snapshots []*Snapshot, period aggregate.Period) []TriageDistributionRow {
	type acc struct {
		red, orange, yellow, green, blue aggregate.Mean
	}

	groups := make(map[aggregate.Key]*acc)
	for _, s := range snapshots {
		k := period.KeyFor(s.LastUpdate)
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
		}
		g.red.Add(float64(s.Triage.Red.Length))
		g.orange.Add(float64(s.Triage.Orange.Length))
		g.yellow.Add(float64(s.Triage.Yellow.Length))
		g.green.Add(float64(s.Triage.Green.Length))
		g.blue.Add(float64(s.Triage.Blue.Length))
	}

	rows := make([]TriageDistributionRow, 0, len(groups))
	for k, g := range groups {
		patients := ColorShares{
			Red:    aggregate.Round2(g.red.Value()),
			Orange: aggregate.Round2(g.orange.Value()),
			Yellow: aggregate.Round2(g.yellow.Value()),
			Green:  aggregate.Round2(g.green.Value()),
			Blue:   aggregate.Round2(g.blue.Value()),
		}
		total := g.red.Value() + g.orange.Value() + g.yellow.Value() + g.green.Value() + g.blue.Value()
		rows = append(rows, TriageDistributionRow{
			Period:   k,
			Patients: patients,
			Total:    aggregate.Round2(total),
			Percentages: ColorShares{
				Red:    aggregate.Percent(g.red.Value(), total),
				Orange: aggregate.Percent(g.orange.Value(), total),
				Yellow: aggregate.Percent(g.yellow.Value(), total),
				Green:  aggregate.Percent(g.green.Value(), total),
				Blue:   aggregate.Percent(g.blue.Value(), total),
			},
			Samples: g.red.Count(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period.Less(rows[j].Period) })
	return rows
}

// PediatricRegionRow is one NUTS II region of the pediatric waiting report.
type PediatricRegionRow struct {
	Region        string  `json:"region"`
	AverageWait   float64 `json:"averageWait"`
	TotalPatients int     `json:"totalPatients"`
	Hospitals     int     `json:"hospitals"`
}

// PediatricByRegion computes the patient-weighted average wait per region.
// Hospitals missing from the registry index contribute to the empty-region
// bucket instead of failing the row.
func PediatricByRegion(snapshots []*Snapshot, hospitals map[int]*reference.Hospital) []PediatricRegionRow {
	type acc struct {
		weighted  float64
		patients  int
		hospitals map[int]struct{}
	}

	groups := make(map[string]*acc)
	for _, s := range snapshots {
		region := ""
		if h, ok := hospitals[s.HospitalID]; ok {
			region = h.Region
		}
		g, ok := groups[region]
		if !ok {
			g = &acc{hospitals: make(map[int]struct{})}
			groups[region] = g
		}
		g.weighted += s.Triage.WeightedTime()
		g.patients += s.Triage.TotalLength()
		g.hospitals[s.HospitalID] = struct{}{}
	}

	rows := make([]PediatricRegionRow, 0, len(groups))
	for region, g := range groups {
		rows = append(rows, PediatricRegionRow{
			Region:        region,
			AverageWait:   aggregate.Round2(aggregate.SafeDivide(g.weighted, float64(g.patients))),
			TotalPatients: g.patients,
			Hospitals:     len(g.hospitals),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AverageWait != rows[j].AverageWait {
			return rows[i].AverageWait < rows[j].AverageWait
		}
		return rows[i].Region < rows[j].Region
	})
	return rows
}

// HospitalContacts is the contact block of the top-hospitals report.
type HospitalContacts struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// TopHospitalRow ranks one hospital by its pediatric weighted wait.
type TopHospitalRow struct {
	HospitalID    int              `json:"hospitalId"`
	Hospital      string           `json:"hospital"`
	Typology      string           `json:"typology,omitempty"`
	District      string           `json:"district,omitempty"`
	Region        string           `json:"region,omitempty"`
	AverageWait   float64          `json:"averageWait"`
	TotalPatients int              `json:"totalPatients"`
	Contacts      HospitalContacts `json:"contacts"`
}

// TopPediatricHospitals ranks hospitals by ascending patient-weighted wait
// (shortest wait first), enriched with registry contact info, limited to n.
func TopPediatricHospitals(snapshots []*Snapshot, hospitals map[int]*reference.Hospital, n int) []TopHospitalRow {
	type acc struct {
		name     string
		weighted float64
		patients int
	}

	groups := make(map[int]*acc)
	for _, s := range snapshots {
		g, ok := groups[s.HospitalID]
		if !ok {
			g = &acc{name: s.HospitalName}
			groups[s.HospitalID] = g
		}
		g.weighted += s.Triage.WeightedTime()
		g.patients += s.Triage.TotalLength()
	}

	rows := make([]TopHospitalRow, 0, len(groups))
	for id, g := range groups {
		row := TopHospitalRow{
			HospitalID:    id,
			Hospital:      g.name,
			AverageWait:   aggregate.Round2(aggregate.SafeDivide(g.weighted, float64(g.patients))),
			TotalPatients: g.patients,
		}
		if h, ok := hospitals[id]; ok {
			row.Hospital = h.Name
			row.Typology = h.Typology
			row.District = h.District
			row.Region = h.Region
			row.Contacts = HospitalContacts{Phone: h.Phone, Email: h.Email, Address: h.Address}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AverageWait != rows[j].AverageWait {
			return rows[i].AverageWait < rows[j].AverageWait
		}
		return rows[i].HospitalID < rows[j].HospitalID
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// EvolutionPoint is one 15-minute bucket of the intra-day evolution report.
type EvolutionPoint struct {
	Time          time.Time `json:"time"`
	Hour          string    `json:"hour"`
	AverageWait   float64   `json:"averageWait"`
	TotalPatients int       `json:"totalPatients"`
}

// EvolutionReport is the intra-day waiting-time timeline plus its three
// busiest buckets.
type EvolutionReport struct {
	Timeline []EvolutionPoint `json:"timeline"`
	Peaks    []EvolutionPoint `json:"peaks"`
}

// TimeEvolution buckets snapshots into 15-minute slots, derives the
// patient-weighted wait per slot, and surfaces the top three slots by
// patient volume.
func TimeEvolution(snapshots []*Snapshot) *EvolutionReport {
	type acc struct {
		weighted float64
		patients int
	}

	groups := make(map[time.Time]*acc)
	for _, s := range snapshots {
		slot := aggregate.FloorToQuarterHour(s.LastUpdate)
		g, ok := groups[slot]
		if !ok {
			g = &acc{}
			groups[slot] = g
		}
		g.weighted += s.Triage.WeightedTime()
		g.patients += s.Triage.TotalLength()
	}

	timeline := make([]EvolutionPoint, 0, len(groups))
	for slot, g := range groups {
		timeline = append(timeline, EvolutionPoint{
			Time:          slot,
			Hour:          slot.Format("15:04"),
			AverageWait:   aggregate.Round2(aggregate.SafeDivide(g.weighted, float64(g.patients))),
			TotalPatients: g.patients,
		})
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Time.Before(timeline[j].Time) })

	peaks := make([]EvolutionPoint, len(timeline))
	copy(peaks, timeline)
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].TotalPatients != peaks[j].TotalPatients {
			return peaks[i].TotalPatients > peaks[j].TotalPatients
		}
		return peaks[i].Time.Before(peaks[j].Time)
	})
	if len(peaks) > 3 {
		peaks = peaks[:3]
	}

	return &EvolutionReport{Timeline: timeline, Peaks: peaks}
}
