package reference

import (
	"context"
	"errors"
	"testing"

	"github.com/healthtime/healthtime/internal/platform/httpx"
)

type mockRepository struct {
	hospitals map[int]*Hospital
	services  map[int]*Service
}

func (m *mockRepository) ListHospitals(_ context.Context, _ HospitalFilter, _, _ int) ([]*Hospital, int, error) {
	return nil, 0, nil
}

func (m *mockRepository) HospitalByID(_ context.Context, id int) (*Hospital, error) {
	return m.hospitals[id], nil
}

func (m *mockRepository) HospitalsByIDs(_ context.Context, ids []int) (map[int]*Hospital, error) {
	out := make(map[int]*Hospital)
	for _, id := range ids {
		if h, ok := m.hospitals[id]; ok {
			out[id] = h
		}
	}
	return out, nil
}

func (m *mockRepository) HospitalsWithCoordinates(_ context.Context) ([]*Hospital, error) {
	var out []*Hospital
	for _, h := range m.hospitals {
		if h.HasCoordinates() {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockRepository) UpsertHospitals(_ context.Context, hospitals []*Hospital) (int, error) {
	return len(hospitals), nil
}

func (m *mockRepository) CountHospitals(_ context.Context) (int, error) {
	return len(m.hospitals), nil
}

func (m *mockRepository) ListServices(_ context.Context, _ ServiceFilter, _, _ int) ([]*Service, int, error) {
	return nil, 0, nil
}

func (m *mockRepository) ServiceByKey(_ context.Context, key int) (*Service, error) {
	return m.services[key], nil
}

func (m *mockRepository) ServiceKeysBySpeciality(_ context.Context, _ string) ([]int, error) {
	return nil, nil
}

func (m *mockRepository) UpsertServices(_ context.Context, services []*Service) (int, error) {
	return len(services), nil
}

func (m *mockRepository) CountServices(_ context.Context) (int, error) {
	return len(m.services), nil
}

func coords(lat, lon float64) (*float64, *float64) {
	return &lat, &lon
}

func testDirectory() *Directory {
	lisboaLat, lisboaLon := coords(38.7223, -9.1393)
	oeirasLat, oeirasLon := coords(38.6979, -9.3017)
	portoLat, portoLon := coords(41.1579, -8.6291)
	return NewDirectory(&mockRepository{
		hospitals: map[int]*Hospital{
			1: {ID: 1, Name: "Hospital de Lisboa", Latitude: lisboaLat, Longitude: lisboaLon},
			2: {ID: 2, Name: "Hospital de Oeiras", Latitude: oeirasLat, Longitude: oeirasLon},
			3: {ID: 3, Name: "Hospital do Porto", Latitude: portoLat, Longitude: portoLon},
			4: {ID: 4, Name: "Hospital Sem Coordenadas"},
		},
	})
}

func TestNearbyDefaultRadius(t *testing.T) {
	d := testDirectory()

	nearby, err := d.Nearby(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Oeiras is ~14 km from Lisboa; Porto is ~270 km away and the
	// coordinate-less hospital cannot be ranked.
	if len(nearby) != 1 {
		t.Fatalf("got %d hospitals, want 1 within the default 100 km", len(nearby))
	}
	if nearby[0].ID != 2 {
		t.Errorf("nearest hospital = %d, want 2", nearby[0].ID)
	}
	if nearby[0].DistanceKm <= 0 || nearby[0].DistanceKm >= 100 {
		t.Errorf("distance = %v km, want a plausible positive value", nearby[0].DistanceKm)
	}
}

func TestNearbyWideRadiusSortsAscending(t *testing.T) {
	d := testDirectory()

	nearby, err := d.Nearby(context.Background(), 1, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nearby) != 2 {
		t.Fatalf("got %d hospitals, want 2", len(nearby))
	}
	if nearby[0].ID != 2 || nearby[1].ID != 3 {
		t.Errorf("order = %d, %d, want closest first", nearby[0].ID, nearby[1].ID)
	}
	for _, n := range nearby {
		if n.ID == 1 {
			t.Error("origin hospital must be excluded")
		}
	}
}

func TestNearbyPoint(t *testing.T) {
	d := testDirectory()

	// A point in central Lisboa: both Lisboa and Oeiras hospitals are in
	// range, and no origin hospital is excluded.
	nearby, err := d.NearbyPoint(context.Background(), 38.72, -9.14, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nearby) != 2 {
		t.Fatalf("got %d hospitals, want 2 within the default 100 km", len(nearby))
	}
	if nearby[0].ID != 1 || nearby[1].ID != 2 {
		t.Errorf("order = %d, %d, want closest first", nearby[0].ID, nearby[1].ID)
	}
}

func TestNearbyOriginWithoutCoordinates(t *testing.T) {
	d := testDirectory()

	_, err := d.Nearby(context.Background(), 4, 100)
	var apiErr *httpx.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != httpx.KindValidation {
		t.Errorf("err = %v, want a validation error", err)
	}
}

func TestHospitalNotFound(t *testing.T) {
	d := testDirectory()

	_, err := d.Hospital(context.Background(), 99)
	var apiErr *httpx.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != httpx.KindNotFound {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestPriorityCodeFromRaw(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1 - Normal", 1},
		{"2 - Prioritário", 2},
		{"3 - Muito Prioritário", 3},
		{" 3 - Muito Prioritário", 3},
		{"Normal", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := PriorityCodeFromRaw(c.in); got != c.want {
			t.Errorf("PriorityCodeFromRaw(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
