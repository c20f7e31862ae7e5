package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthtime/healthtime/internal/domain/consultation"
	"github.com/healthtime/healthtime/internal/domain/emergency"
	"github.com/healthtime/healthtime/internal/domain/reference"
	"github.com/healthtime/healthtime/internal/domain/surgery"
	"github.com/healthtime/healthtime/internal/platform/httpx"
)

type mockRefs struct {
	hospitals  map[int]*reference.Hospital
	services   map[int]*reference.Service
	serviceErr error
}

func (m *mockRefs) HospitalByID(_ context.Context, id int) (*reference.Hospital, error) {
	return m.hospitals[id], nil
}

func (m *mockRefs) ServiceByKey(_ context.Context, key int) (*reference.Service, error) {
	if m.serviceErr != nil {
		return nil, m.serviceErr
	}
	return m.services[key], nil
}

type mockEmergencyStore struct {
	got []*emergency.Snapshot
}

func (m *mockEmergencyStore) BulkUpsert(_ context.Context, snapshots []*emergency.Snapshot) (int, int, error) {
	m.got = snapshots
	return len(snapshots), 0, nil
}

type mockConsultationStore struct {
	got []*consultation.Record
}

func (m *mockConsultationStore) BulkUpsert(_ context.Context, records []*consultation.Record) (int, int, error) {
	m.got = records
	return len(records), 0, nil
}

type mockSurgeryStore struct {
	got []*surgery.Record
}

func (m *mockSurgeryStore) BulkUpsert(_ context.Context, records []*surgery.Record) (int, int, error) {
	m.got = records
	return len(records), 0, nil
}

func newTestNormalizer() (*Normalizer, *mockEmergencyStore, *mockConsultationStore, *mockSurgeryStore) {
	refs := &mockRefs{
		hospitals: map[int]*reference.Hospital{
			1: {ID: 1, Name: "Hospital de Santa Maria"},
		},
		services: map[int]*reference.Service{
			100: {Key: 100, Speciality: "Cardiologia"},
		},
	}
	emergencies := &mockEmergencyStore{}
	consultations := &mockConsultationStore{}
	surgeries := &mockSurgeryStore{}
	n := NewNormalizer(refs, emergencies, consultations, surgeries, zerolog.Nop())
	return n, emergencies, consultations, surgeries
}

func errorKind(t *testing.T, err error) httpx.Kind {
	t.Helper()
	var apiErr *httpx.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *httpx.Error, got %T: %v", err, err)
	}
	return apiErr.Kind
}

func validEmergencyItem() EmergencyItem {
	return EmergencyItem{
		TypeCode:        "SU01",
		TypeDescription: "Urgência Geral",
		Status:          emergency.StatusOpen,
		LastUpdate:      time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC),
	}
}

func TestIngestEmergenciesUnknownHospital(t *testing.T) {
	n, store, _, _ := newTestNormalizer()

	_, err := n.IngestEmergencies(context.Background(),
		EmergencyHeader{HospitalID: 99, HospitalName: "Hospital Fantasma"},
		[]EmergencyItem{validEmergencyItem()})
	if kind := errorKind(t, err); kind != httpx.KindReferenceMismatch {
		t.Errorf("error kind = %v, want reference mismatch", kind)
	}
	if store.got != nil {
		t.Error("nothing should be written for an unknown hospital")
	}
}

func TestIngestEmergenciesNameMismatchIsFatal(t *testing.T) {
	n, store, _, _ := newTestNormalizer()

	_, err := n.IngestEmergencies(context.Background(),
		EmergencyHeader{HospitalID: 1, HospitalName: "Hospital Errado"},
		[]EmergencyItem{validEmergencyItem()})
	if kind := errorKind(t, err); kind != httpx.KindReferenceMismatch {
		t.Errorf("error kind = %v, want reference mismatch", kind)
	}
	if store.got != nil {
		t.Error("a name mismatch must reject the whole batch")
	}
}

func TestIngestEmergenciesSkipsInvalidItems(t *testing.T) {
	n, store, _, _ := newTestNormalizer()

	missingStatus := validEmergencyItem()
	missingStatus.Status = ""

	result, err := n.IngestEmergencies(context.Background(),
		EmergencyHeader{HospitalID: 1, HospitalName: "Hospital de Santa Maria", SubmittedAt: time.Now()},
		[]EmergencyItem{validEmergencyItem(), missingStatus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.Received != 2 || result.Stats.Inserted != 1 {
		t.Errorf("stats = %+v, want received 2, inserted 1", result.Stats)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one item error", result.Errors)
	}
	if len(store.got) != 1 {
		t.Fatalf("stored %d snapshots, want 1", len(store.got))
	}
	if store.got[0].HospitalName != "Hospital de Santa Maria" {
		t.Errorf("stored snapshot carries name %q, want canonical registry name", store.got[0].HospitalName)
	}
}

func TestIngestEmergenciesAllInvalid(t *testing.T) {
	n, _, _, _ := newTestNormalizer()

	empty := EmergencyItem{}
	_, err := n.IngestEmergencies(context.Background(),
		EmergencyHeader{HospitalID: 1, HospitalName: "Hospital de Santa Maria"},
		[]EmergencyItem{empty})
	if kind := errorKind(t, err); kind != httpx.KindValidation {
		t.Errorf("error kind = %v, want validation", kind)
	}
}

func TestIngestConsultationsDerivesCalendar(t *testing.T) {
	n, _, store, _ := newTestNormalizer()

	result, err := n.IngestConsultations(context.Background(),
		PeriodHeader{HospitalID: 1, HospitalName: "Hospital de Santa Maria", Year: 2024, Month: "Dezembro"},
		[]ConsultationItem{{
			ServiceKey:       100,
			Day:              2,
			WaitNormal:       30,
			WaitPriority:     20,
			WaitHighPriority: 10,
			NumberOfPeople:   5,
		}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.Inserted != 1 {
		t.Fatalf("stats = %+v, want one insert", result.Stats)
	}

	rec := store.got[0]
	if rec.Month != "Dezembro" {
		t.Errorf("month stored as %q, want the submitted text", rec.Month)
	}
	if rec.Quarter != 4 {
		t.Errorf("quarter = %d, want 4", rec.Quarter)
	}
	// 2024-12-02 is a Monday in ISO week 49.
	if rec.Week != 49 {
		t.Errorf("week = %d, want 49", rec.Week)
	}
	if rec.Speciality != "Cardiologia" {
		t.Errorf("speciality = %q, want registry fallback", rec.Speciality)
	}
}

func TestIngestConsultationsUnknownMonthIsFatal(t *testing.T) {
	n, _, store, _ := newTestNormalizer()

	_, err := n.IngestConsultations(context.Background(),
		PeriodHeader{HospitalID: 1, HospitalName: "Hospital de Santa Maria", Year: 2024, Month: "Smarch"},
		[]ConsultationItem{{ServiceKey: 100, Day: 2}})
	if kind := errorKind(t, err); kind != httpx.KindValidation {
		t.Errorf("error kind = %v, want validation", kind)
	}
	if store.got != nil {
		t.Error("an unknown period month must reject the whole batch")
	}
}

func TestIngestSurgeriesSkipsUnknownService(t *testing.T) {
	n, _, _, store := newTestNormalizer()

	result, err := n.IngestSurgeries(context.Background(),
		PeriodHeader{HospitalID: 1, HospitalName: "Hospital de Santa Maria", Year: 2024, Month: "maio"},
		[]SurgeryItem{
			{ServiceKey: 100, WaitingListType: surgery.ListGeneral, AverageWaitingTime: 90, Day: 15},
			{ServiceKey: 999, WaitingListType: surgery.ListGeneral, AverageWaitingTime: 10, Day: 15},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.Received != 2 || result.Stats.Inserted != 1 {
		t.Errorf("stats = %+v, want received 2, inserted 1", result.Stats)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %v, want one item error", result.Errors)
	}
	if len(store.got) != 1 || store.got[0].ServiceKey != 100 {
		t.Errorf("stored records = %+v, want only service 100", store.got)
	}
}

func TestIngestConsultationsStoreFailureIsFatal(t *testing.T) {
	refs := &mockRefs{
		hospitals: map[int]*reference.Hospital{
			1: {ID: 1, Name: "Hospital de Santa Maria"},
		},
		serviceErr: errors.New("connection refused"),
	}
	store := &mockConsultationStore{}
	n := NewNormalizer(refs, &mockEmergencyStore{}, store, &mockSurgeryStore{}, zerolog.Nop())

	_, err := n.IngestConsultations(context.Background(),
		PeriodHeader{HospitalID: 1, HospitalName: "Hospital de Santa Maria", Year: 2024, Month: "maio"},
		[]ConsultationItem{{ServiceKey: 100, Day: 2}})
	if kind := errorKind(t, err); kind != httpx.KindInternal {
		t.Errorf("error kind = %v, want internal: a failing reference store is not an item fault", kind)
	}
	if store.got != nil {
		t.Error("nothing should be written when reference resolution fails")
	}
}

func TestIngestSurgeriesRequiresListType(t *testing.T) {
	n, _, _, _ := newTestNormalizer()

	_, err := n.IngestSurgeries(context.Background(),
		PeriodHeader{HospitalID: 1, HospitalName: "Hospital de Santa Maria", Year: 2024, Month: "maio"},
		[]SurgeryItem{{ServiceKey: 100, Day: 15}})
	if kind := errorKind(t, err); kind != httpx.KindValidation {
		t.Errorf("error kind = %v, want validation", kind)
	}
}
