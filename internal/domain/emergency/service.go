package emergency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthtime/healthtime/internal/aggregate"
	"github.com/healthtime/healthtime/internal/domain/reference"
	"github.com/healthtime/healthtime/internal/platform/httpx"
	"github.com/healthtime/healthtime/pkg/pagination"
)

// pediatricTerms are the description keywords that identify pediatric
// emergency departments, in the spellings the source data uses.
var pediatricTerms = []string{"pediátrica", "pediatria", "pediatrica", "pediátrico", "pediatrico"}

// HospitalDirectory is the registry lookup the reports need. Satisfied by
// reference.Directory.
type HospitalDirectory interface {
	HospitalIndex(ctx context.Context, ids []int) (map[int]*reference.Hospital, error)
}

// Service answers emergency list and analytics queries.
type Service struct {
	repo      Repository
	hospitals HospitalDirectory
}

func NewService(repo Repository, hospitals HospitalDirectory) *Service {
	return &Service{repo: repo, hospitals: hospitals}
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*Snapshot, int, error) {
	snapshots, total, err := s.repo.List(ctx, f, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, httpx.Internal(err, "failed to list emergencies")
	}
	return snapshots, total, nil
}

// Detail is a snapshot enriched with the registry entry of its hospital,
// when one exists.
type Detail struct {
	*Snapshot
	Hospital *reference.Hospital `json:"hospital,omitempty"`
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	snapshot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, httpx.Internal(err, "failed to load emergency")
	}
	if snapshot == nil {
		return nil, httpx.NotFound(fmt.Sprintf("emergency %s not found", id))
	}
	index, err := s.hospitals.HospitalIndex(ctx, []int{snapshot.HospitalID})
	if err != nil {
		return nil, err
	}
	return &Detail{Snapshot: snapshot, Hospital: index[snapshot.HospitalID]}, nil
}

// AverageWaitParams selects the population of the average-wait report.
// Category optionally restricts it to snapshots with patients queued in one
// triage color. An empty window defaults to the current day.
type AverageWaitParams struct {
	TypeCode string
	Category string
	Period   aggregate.Period
	From, To *time.Time
}

func (s *Service) AverageWait(ctx context.Context, p AverageWaitParams) ([]AverageWaitRow, error) {
	from, to := defaultToToday(p.From, p.To)
	snapshots, err := s.repo.Fetch(ctx, Filter{
		TypeCode: p.TypeCode,
		OpenOnly: true,
		From:     &from,
		To:       &to,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load emergencies")
	}
	if p.Category != "" {
		snapshots, err = filterByCategory(snapshots, p.Category)
		if err != nil {
			return nil, err
		}
	}
	return AverageWaitByType(snapshots, p.Period), nil
}

// TriageDistributionParams selects the population of the triage-percentages
// report. HospitalID is required; TimeOfDay optionally keeps only one band.
type TriageDistributionParams struct {
	HospitalID int
	Period     aggregate.Period
	TimeOfDay  string
	From, To   *time.Time
}

func (s *Service) TriagePercentages(ctx context.Context, p TriageDistributionParams) ([]TriageDistributionRow, error) {
	snapshots, err := s.repo.Fetch(ctx, Filter{
		HospitalID: &p.HospitalID,
		OpenOnly:   true,
		From:       p.From,
		To:         p.To,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load emergencies")
	}
	if p.TimeOfDay != "" {
		kept := snapshots[:0]
		for _, snap := range snapshots {
			if aggregate.TimeOfDay(snap.LastUpdate.Hour()) == p.TimeOfDay {
				kept = append(kept, snap)
			}
		}
		snapshots = kept
	}
	return TriageDistribution(snapshots, p.Period), nil
}

// PediatricParams selects the lookback window and an optional region filter
// for the regional pediatric report.
type PediatricParams struct {
	Window aggregate.Period // ByWeek, ByMonth or ByQuarter lookback
	Region string
}

func (s *Service) PediatricAverageWait(ctx context.Context, p PediatricParams) ([]PediatricRegionRow, error) {
	from := lookbackStart(p.Window)
	snapshots, err := s.repo.Fetch(ctx, Filter{
		TypeSearch: pediatricTerms,
		OpenOnly:   true,
		From:       &from,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load emergencies")
	}
	index, err := s.hospitals.HospitalIndex(ctx, hospitalIDs(snapshots))
	if err != nil {
		return nil, err
	}
	rows := PediatricByRegion(snapshots, index)
	if p.Region != "" {
		kept := rows[:0]
		for _, row := range rows {
			if row.Region == p.Region {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	return rows, nil
}

// TopPediatricParams bounds the top-hospitals ranking.
type TopPediatricParams struct {
	From, To *time.Time
	Limit    int
}

func (s *Service) TopPediatric(ctx context.Context, p TopPediatricParams) ([]TopHospitalRow, error) {
	// Unlike the windowed averages, the ranking considers every snapshot
	// regardless of department status.
	snapshots, err := s.repo.Fetch(ctx, Filter{
		TypeSearch: pediatricTerms,
		From:       p.From,
		To:         p.To,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load emergencies")
	}
	index, err := s.hospitals.HospitalIndex(ctx, hospitalIDs(snapshots))
	if err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	return TopPediatricHospitals(snapshots, index, limit), nil
}

// EvolutionParams selects one day of snapshots for the intra-day timeline.
// TypeSearch defaults to the general emergency typology.
type EvolutionParams struct {
	Date       time.Time
	HospitalID *int
	TypeSearch string
}

func (s *Service) TimeEvolution(ctx context.Context, p EvolutionParams) (*EvolutionReport, error) {
	search := p.TypeSearch
	if search == "" {
		search = "Geral"
	}
	from := time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	snapshots, err := s.repo.Fetch(ctx, Filter{
		HospitalID: p.HospitalID,
		TypeSearch: []string{search},
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load emergencies")
	}
	return TimeEvolution(snapshots), nil
}

func filterByCategory(snapshots []*Snapshot, category string) ([]*Snapshot, error) {
	var length func(TriageSet) int
	switch category {
	case "red":
		length = func(t TriageSet) int { return t.Red.Length }
	case "orange":
		length = func(t TriageSet) int { return t.Orange.Length }
	case "yellow":
		length = func(t TriageSet) int { return t.Yellow.Length }
	case "green":
		length = func(t TriageSet) int { return t.Green.Length }
	case "blue":
		length = func(t TriageSet) int { return t.Blue.Length }
	default:
		return nil, httpx.Validation("category must be one of red, orange, yellow, green, blue")
	}
	kept := make([]*Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if length(s.Triage) > 0 {
			kept = append(kept, s)
		}
	}
	return kept, nil
}

func hospitalIDs(snapshots []*Snapshot) []int {
	seen := make(map[int]struct{}, len(snapshots))
	ids := make([]int, 0, len(snapshots))
	for _, s := range snapshots {
		if _, ok := seen[s.HospitalID]; ok {
			continue
		}
		seen[s.HospitalID] = struct{}{}
		ids = append(ids, s.HospitalID)
	}
	return ids
}

func defaultToToday(from, to *time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	f := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	t := now
	if from != nil {
		f = *from
	}
	if to != nil {
		t = *to
	}
	return f, t
}

func lookbackStart(window aggregate.Period) time.Time {
	now := time.Now().UTC()
	switch window {
	case aggregate.ByWeek:
		return now.AddDate(0, 0, -7)
	case aggregate.ByQuarter:
		return now.AddDate(0, -3, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}
