package consultation

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

// Service answers consultation list and analytics queries.
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
	HospitalID   *int
	HospitalName string
	Year         *int
	Month        string
	Speciality   string
}

func (s *Service) List(ctx context.Context, p ListParams, pg pagination.Params) ([]*Record, int, error) {
	f := Filter{
		HospitalID:   p.HospitalID,
		HospitalName: p.HospitalName,
		Year:         p.Year,
		Month:        p.Month,
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
		return nil, 0, httpx.Internal(err, "failed to list consultations")
	}
	return records, total, nil
}

// GapParams select the population of the oncology-gap report. Speciality is
// required: the comparison is only meaningful within one speciality.
type GapParams struct {
	Speciality string
	HospitalID *int
	Year       *int
}

func (s *Service) OncologyGap(ctx context.Context, p GapParams) ([]OncologyGapRow, error) {
	if p.Speciality == "" {
		return nil, httpx.Validation("query parameter 'speciality' is required")
	}
	keys, err := s.services.KeysBySpeciality(ctx, p.Speciality)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []OncologyGapRow{}, nil
	}

	records, err := s.repo.Fetch(ctx, Filter{
		HospitalID:  p.HospitalID,
		ServiceKeys: keys,
		Year:        p.Year,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load consultations")
	}
	return OncologyGap(records), nil
}
