package surgery

import (
	"context"

	"github.com/healthtime/healthtime/internal/platform/httpx"
	"github.com/healthtime/healthtime/pkg/pagination"
)

// ServiceDirectory resolves a speciality pattern to registry service keys.
// Satisfied by reference.Directory.
type ServiceDirectory interface {
	KeysBySpeciality(ctx context.Context, pattern string) ([]int, error)
}

// Service answers surgery list and analytics queries.
type Service struct {
	repo     Repository
	services ServiceDirectory
}

func NewService(repo Repository, services ServiceDirectory) *Service {
	return &Service{repo: repo, services: services}
}

// ListParams are the list filters; Speciality is expanded to the matching
// registry service keys before querying.
type ListParams struct {
	HospitalID      *int
	HospitalName    string
	Year            *int
	Month           string
	Speciality      string
	WaitingListType string
}

func (s *Service) List(ctx context.Context, p ListParams, pg pagination.Params) ([]*Record, int, error) {
	f := Filter{
		HospitalID:      p.HospitalID,
		HospitalName:    p.HospitalName,
		Year:            p.Year,
		Month:           p.Month,
		WaitingListType: p.WaitingListType,
	}
	if p.Speciality != "" {
		keys, err := s.services.KeysBySpeciality(ctx, p.Speciality)
		if err != nil {
			return nil, 0, err
		}
		if len(keys) == 0 {
			return []*Record{}, 0, nil
		}
		f.ServiceKeys = keys
	}

	records, total, err := s.repo.List(ctx, f, pg.Limit, pg.Offset())
	if err != nil {
		return nil, 0, httpx.Internal(err, "failed to list surgeries")
	}
	return records, total, nil
}

// ComparisonParams select the population of the list comparison. Month is
// required: the published extracts are monthly, so comparing across an
// unbounded window mixes reporting periods.
type ComparisonParams struct {
	Month      string
	Year       *int
	HospitalID *int
}

func (s *Service) SpecialtyAverageWait(ctx context.Context, p ComparisonParams) ([]ComparisonRow, error) {
	if p.Month == "" {
		return nil, httpx.Validation("query parameter 'month' is required")
	}
	records, err := s.repo.Fetch(ctx, Filter{
		HospitalID: p.HospitalID,
		Year:       p.Year,
		Month:      p.Month,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load surgeries")
	}
	return CompareLists(records), nil
}
