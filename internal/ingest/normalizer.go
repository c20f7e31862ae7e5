// Package ingest turns submitted report documents into fact rows: it
// resolves and verifies registry references, derives the calendar columns,
// and replays each batch as one idempotent upsert. Header faults reject the
// whole batch before anything is written; item faults skip the item and are
// reported back to the submitter.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtime/healthtime/internal/domain/consultation"
	"github.com/healthtime/healthtime/internal/domain/emergency"
	"github.com/healthtime/healthtime/internal/domain/reference"
	"github.com/healthtime/healthtime/internal/domain/surgery"
	"github.com/healthtime/healthtime/internal/platform/httpx"
)

// ReferenceStore resolves registry references; lookups return (nil, nil) on
// miss. Satisfied by reference.Repository.
type ReferenceStore interface {
	HospitalByID(ctx context.Context, id int) (*reference.Hospital, error)
	ServiceByKey(ctx context.Context, key int) (*reference.Service, error)
}

// EmergencyStore persists emergency snapshots. Satisfied by
// emergency.Repository.
type EmergencyStore interface {
	BulkUpsert(ctx context.Context, snapshots []*emergency.Snapshot) (inserted, updated int, err error)
}

// ConsultationStore persists consultation records. Satisfied by
// consultation.Repository.
type ConsultationStore interface {
	BulkUpsert(ctx context.Context, records []*consultation.Record) (inserted, updated int, err error)
}

// SurgeryStore persists surgery records. Satisfied by surgery.Repository.
type SurgeryStore interface {
	BulkUpsert(ctx context.Context, records []*surgery.Record) (inserted, updated int, err error)
}

// Stats counts the outcome of one submission.
type Stats struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Result is the outcome of one accepted submission: the upsert counts plus
// the errors of any skipped items.
type Result struct {
	Stats  Stats    `json:"stats"`
	Errors []string `json:"errors,omitempty"`
}

// Normalizer validates and persists submitted report batches.
type Normalizer struct {
	refs          ReferenceStore
	emergencies   EmergencyStore
	consultations ConsultationStore
	surgeries     SurgeryStore
	logger        zerolog.Logger
}

func NewNormalizer(refs ReferenceStore, emergencies EmergencyStore, consultations ConsultationStore, surgeries SurgeryStore, logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		refs:          refs,
		emergencies:   emergencies,
		consultations: consultations,
		surgeries:     surgeries,
		logger:        logger,
	}
}

// EmergencyHeader is the validated header of an emergency submission.
type EmergencyHeader struct {
	HospitalID      int
	HospitalName    string
	HospitalAddress string
	SubmittedAt     time.Time
}

// EmergencyItem is one emergency state entry of a submission.
type EmergencyItem struct {
	TypeCode        string
	TypeDescription string
	Status          string
	LastUpdate      time.Time
	ExtractedAt     time.Time
	Triage          emergency.TriageSet
	Observation     emergency.TriageSet
}

// PeriodHeader is the validated header of a monthly consultation or surgery
// submission.
type PeriodHeader struct {
	HospitalID   int
	HospitalName string
	Year         int
	Month        string
}

// ConsultationItem is one consultation waiting entry of a submission.
type ConsultationItem struct {
	ServiceKey          int
	Day                 int
	WaitNormal          float64
	WaitPriority        float64
	WaitHighPriority    float64
	NumberOfPeople      int
	PriorityDescription string
	Speciality          string
}

// SurgeryItem is one surgery waiting-list entry of a submission.
type SurgeryItem struct {
	ServiceKey          int
	WaitingListType     string
	AverageWaitingTime  float64
	Day                 int
	NumberOfPeople      int
	PriorityDescription string
	Speciality          string
}

// resolveHospital verifies the header's hospital reference: the hospital must
// be registered and the asserted name must match the canonical one exactly.
func (n *Normalizer) resolveHospital(ctx context.Context, id int, name string) (*reference.Hospital, error) {
	hospital, err := n.refs.HospitalByID(ctx, id)
	if err != nil {
		return nil, httpx.Internal(err, "failed to resolve hospital")
	}
	if hospital == nil {
		return nil, httpx.ReferenceMismatch(fmt.Sprintf("hospital %d is not registered", id))
	}
	if hospital.Name != name {
		return nil, httpx.ReferenceMismatch(fmt.Sprintf(
			"hospital name %q does not match registered name %q for hospital %d", name, hospital.Name, id))
	}
	return hospital, nil
}

func (n *Normalizer) IngestEmergencies(ctx context.Context, header EmergencyHeader, items []EmergencyItem) (*Result, error) {
	hospital, err := n.resolveHospital(ctx, header.HospitalID, header.HospitalName)
	if err != nil {
		return nil, err
	}

	var (
		snapshots []*emergency.Snapshot
		itemErrs  []string
	)
	for i, item := range items {
		switch {
		case item.TypeCode == "":
			itemErrs = append(itemErrs, fmt.Sprintf("item %d: missing emergency type code", i+1))
			continue
		case item.Status == "":
			itemErrs = append(itemErrs, fmt.Sprintf("item %d: missing emergency status", i+1))
			continue
		case item.LastUpdate.IsZero():
			itemErrs = append(itemErrs, fmt.Sprintf("item %d: missing or unparseable last update timestamp", i+1))
			continue
		}

		extractedAt := item.ExtractedAt
		if extractedAt.IsZero() {
			extractedAt = header.SubmittedAt
		}
		snapshots = append(snapshots, &emergency.Snapshot{
			ID:              uuid.New(),
			HospitalID:      hospital.ID,
			HospitalName:    hospital.Name,
			HospitalAddress: header.HospitalAddress,
			TypeCode:        item.TypeCode,
			TypeDescription: item.TypeDescription,
			Status:          item.Status,
			LastUpdate:      item.LastUpdate,
			SubmittedAt:     header.SubmittedAt,
			ExtractedAt:     extractedAt,
			Triage:          item.Triage,
			Observation:     item.Observation,
		})
	}
	if len(snapshots) == 0 {
		return nil, httpx.ValidationDetails("no valid items in submission", itemErrs)
	}

	inserted, updated, err := n.emergencies.BulkUpsert(ctx, snapshots)
	if err != nil {
		return nil, httpx.Internal(err, "failed to store emergency snapshots")
	}
	n.logger.Info().
		Int("hospital_id", hospital.ID).
		Int("received", len(items)).
		Int("inserted", inserted).
		Int("updated", updated).
		Int("skipped", len(itemErrs)).
		Msg("emergency submission processed")
	return &Result{
		Stats:  Stats{Received: len(items), Inserted: inserted, Updated: updated},
		Errors: itemErrs,
	}, nil
}

func (n *Normalizer) IngestConsultations(ctx context.Context, header PeriodHeader, items []ConsultationItem) (*Result, error) {
	hospital, month, err := n.resolvePeriodHeader(ctx, header)
	if err != nil {
		return nil, err
	}

	var (
		records  []*consultation.Record
		itemErrs []string
	)
	for i, item := range items {
		service, itemErr, err := n.resolveItem(ctx, item.ServiceKey, item.Day)
		if err != nil {
			return nil, err
		}
		if itemErr != "" {
			itemErrs = append(itemErrs, fmt.Sprintf("item %d: %s", i+1, itemErr))
			continue
		}
		records = append(records, &consultation.Record{
			ID:                  uuid.New(),
			HospitalID:          hospital.ID,
			HospitalName:        hospital.Name,
			ServiceKey:          service.Key,
			WaitNormal:          item.WaitNormal,
			WaitPriority:        item.WaitPriority,
			WaitHighPriority:    item.WaitHighPriority,
			Day:                 item.Day,
			Week:                ISOWeek(header.Year, month, item.Day),
			Quarter:             Quarter(month),
			Month:               header.Month,
			Year:                header.Year,
			NumberOfPeople:      item.NumberOfPeople,
			PriorityDescription: item.PriorityDescription,
			Speciality:          fallback(item.Speciality, service.Speciality),
		})
	}
	if len(records) == 0 {
		return nil, httpx.ValidationDetails("no valid items in submission", itemErrs)
	}

	inserted, updated, err := n.consultations.BulkUpsert(ctx, records)
	if err != nil {
		return nil, httpx.Internal(err, "failed to store consultation records")
	}
	n.logger.Info().
		Int("hospital_id", hospital.ID).
		Int("received", len(items)).
		Int("inserted", inserted).
		Int("updated", updated).
		Int("skipped", len(itemErrs)).
		Msg("consultation submission processed")
	return &Result{
		Stats:  Stats{Received: len(items), Inserted: inserted, Updated: updated},
		Errors: itemErrs,
	}, nil
}

func (n *Normalizer) IngestSurgeries(ctx context.Context, header PeriodHeader, items []SurgeryItem) (*Result, error) {
	hospital, month, err := n.resolvePeriodHeader(ctx, header)
	if err != nil {
		return nil, err
	}

	var (
		records  []*surgery.Record
		itemErrs []string
	)
	for i, item := range items {
		if item.WaitingListType == "" {
			itemErrs = append(itemErrs, fmt.Sprintf("item %d: missing waiting list type", i+1))
			continue
		}
		service, itemErr, err := n.resolveItem(ctx, item.ServiceKey, item.Day)
		if err != nil {
			return nil, err
		}
		if itemErr != "" {
			itemErrs = append(itemErrs, fmt.Sprintf("item %d: %s", i+1, itemErr))
			continue
		}
		records = append(records, &surgery.Record{
			ID:                  uuid.New(),
			HospitalID:          hospital.ID,
			HospitalName:        hospital.Name,
			ServiceKey:          service.Key,
			WaitingListType:     item.WaitingListType,
			AverageWaitingTime:  item.AverageWaitingTime,
			Day:                 item.Day,
			Week:                ISOWeek(header.Year, month, item.Day),
			Quarter:             Quarter(month),
			Month:               header.Month,
			Year:                header.Year,
			NumberOfPeople:      item.NumberOfPeople,
			PriorityDescription: item.PriorityDescription,
			Speciality:          fallback(item.Speciality, service.Speciality),
		})
	}
	if len(records) == 0 {
		return nil, httpx.ValidationDetails("no valid items in submission", itemErrs)
	}

	inserted, updated, err := n.surgeries.BulkUpsert(ctx, records)
	if err != nil {
		return nil, httpx.Internal(err, "failed to store surgery records")
	}
	n.logger.Info().
		Int("hospital_id", hospital.ID).
		Int("received", len(items)).
		Int("inserted", inserted).
		Int("updated", updated).
		Int("skipped", len(itemErrs)).
		Msg("surgery submission processed")
	return &Result{
		Stats:  Stats{Received: len(items), Inserted: inserted, Updated: updated},
		Errors: itemErrs,
	}, nil
}

// resolvePeriodHeader verifies the hospital reference and the reporting
// period. The month name must parse: every item in the batch depends on it
// for the derived calendar columns.
func (n *Normalizer) resolvePeriodHeader(ctx context.Context, header PeriodHeader) (*reference.Hospital, int, error) {
	hospital, err := n.resolveHospital(ctx, header.HospitalID, header.HospitalName)
	if err != nil {
		return nil, 0, err
	}
	if header.Year <= 0 {
		return nil, 0, httpx.Validation("report period year is missing")
	}
	month, ok := MonthIndex(header.Month)
	if !ok {
		return nil, 0, httpx.Validation(fmt.Sprintf("unrecognized report period month %q", header.Month))
	}
	return hospital, month, nil
}

// resolveItem checks one item's service reference. An unresolvable reference
// is an item-level fault the batch survives; a failing reference store is
// not, and aborts the batch.
func (n *Normalizer) resolveItem(ctx context.Context, serviceKey, day int) (*reference.Service, string, error) {
	if day < 1 || day > 31 {
		return nil, fmt.Sprintf("day %d is out of range", day), nil
	}
	service, err := n.refs.ServiceByKey(ctx, serviceKey)
	if err != nil {
		return nil, "", httpx.Internal(err, "failed to resolve service")
	}
	if service == nil {
		return nil, fmt.Sprintf("service %d is not registered", serviceKey), nil
	}
	return service, "", nil
}

func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	return secondary
}
