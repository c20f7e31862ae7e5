// Package stats serves the cross-domain reports: store-wide counts and the
// consultation-vs-surgery waiting discrepancy.
package stats

import (
	"context"
	"time"

	"github.com/healthtime/healthtime/internal/domain/consultation"
	"github.com/healthtime/healthtime/internal/domain/surgery"
	"github.com/healthtime/healthtime/internal/platform/httpx"
)

// ReferenceSource exposes the registry counts. Satisfied by
// reference.Repository.
type ReferenceSource interface {
	CountHospitals(ctx context.Context) (int, error)
	CountServices(ctx context.Context) (int, error)
}

// EmergencySource exposes the emergency fact count. Satisfied by
// emergency.Repository.
type EmergencySource interface {
	Count(ctx context.Context) (int, error)
}

// ConsultationSource exposes consultation facts. Satisfied by
// consultation.Repository.
type ConsultationSource interface {
	Fetch(ctx context.Context, f consultation.Filter) ([]*consultation.Record, error)
	Count(ctx context.Context) (int, error)
}

// SurgerySource exposes surgery facts. Satisfied by surgery.Repository.
type SurgerySource interface {
	Fetch(ctx context.Context, f surgery.Filter) ([]*surgery.Record, error)
	Count(ctx context.Context) (int, error)
}

type Service struct {
	refs          ReferenceSource
	emergencies   EmergencySource
	consultations ConsultationSource
	surgeries     SurgerySource
}

func NewService(refs ReferenceSource, emergencies EmergencySource, consultations ConsultationSource, surgeries SurgerySource) *Service {
	return &Service{refs: refs, emergencies: emergencies, consultations: consultations, surgeries: surgeries}
}

// Overview is the store-wide record census.
type Overview struct {
	Hospitals     int       `json:"hospitals"`
	Services      int       `json:"services"`
	Emergencies   int       `json:"emergencies"`
	Consultations int       `json:"consultations"`
	Surgeries     int       `json:"surgeries"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	o := &Overview{GeneratedAt: time.Now().UTC()}
	var err error
	if o.Hospitals, err = s.refs.CountHospitals(ctx); err != nil {
		return nil, httpx.Internal(err, "failed to count hospitals")
	}
	if o.Services, err = s.refs.CountServices(ctx); err != nil {
		return nil, httpx.Internal(err, "failed to count services")
	}
	if o.Emergencies, err = s.emergencies.Count(ctx); err != nil {
		return nil, httpx.Internal(err, "failed to count emergencies")
	}
	if o.Consultations, err = s.consultations.Count(ctx); err != nil {
		return nil, httpx.Internal(err, "failed to count consultations")
	}
	if o.Surgeries, err = s.surgeries.Count(ctx); err != nil {
		return nil, httpx.Internal(err, "failed to count surgeries")
	}
	return o, nil
}

// DiscrepancyParams select the population of the discrepancy report. Year is
// required; Grouping picks the period column the rows are keyed by.
type DiscrepancyParams struct {
	Year       int
	Grouping   Grouping
	Month      string
	HospitalID *int
	Speciality string
}

func (s *Service) Discrepancy(ctx context.Context, p DiscrepancyParams) ([]DiscrepancyRow, error) {
	if p.Year == 0 {
		return nil, httpx.Validation("query parameter 'year' is required")
	}

	consultations, err := s.consultations.Fetch(ctx, consultation.Filter{
		HospitalID: p.HospitalID,
		Year:       &p.Year,
		Month:      p.Month,
		Speciality: p.Speciality,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load consultations")
	}
	surgeries, err := s.surgeries.Fetch(ctx, surgery.Filter{
		HospitalID: p.HospitalID,
		Year:       &p.Year,
		Month:      p.Month,
		Speciality: p.Speciality,
	})
	if err != nil {
		return nil, httpx.Internal(err, "failed to load surgeries")
	}

	return Discrepancy(consultations, surgeries, p.Grouping), nil
}
