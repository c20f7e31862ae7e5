package reference

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/healthtime/healthtime/internal/aggregate"
	"github.com/healthtime/healthtime/internal/platform/httpx"
)

const (
	earthRadiusKm   = 6371.0
	defaultRadiusKm = 100.0
)

// Directory exposes registry lookups to handlers and to the other domains.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) Hospitals(ctx context.Context, f HospitalFilter, limit, offset int) ([]*Hospital, int, error) {
	hospitals, total, err := d.repo.ListHospitals(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, httpx.Internal(err, "failed to list hospitals")
	}
	return hospitals, total, nil
}

// Hospital returns a hospital by its registry identifier.
func (d *Directory) Hospital(ctx context.Context, id int) (*Hospital, error) {
	h, err := d.repo.HospitalByID(ctx, id)
	if err != nil {
		return nil, httpx.Internal(err, "failed to load hospital")
	}
	if h == nil {
		return nil, httpx.NotFound(fmt.Sprintf("hospital %d not found", id))
	}
	return h, nil
}

// HospitalIndex resolves a set of hospital IDs in one round trip. IDs without
// a registry entry are simply absent from the result.
func (d *Directory) HospitalIndex(ctx context.Context, ids []int) (map[int]*Hospital, error) {
	index, err := d.repo.HospitalsByIDs(ctx, ids)
	if err != nil {
		return nil, httpx.Internal(err, "failed to load hospitals")
	}
	return index, nil
}

// NearbyHospital pairs a hospital with its distance from the query origin.
type NearbyHospital struct {
	*Hospital
	DistanceKm float64 `json:"distanceKm"`
}

// Nearby lists the hospitals within radiusKm of the given hospital, closest
// first. The origin itself and hospitals without coordinates are excluded.
func (d *Directory) Nearby(ctx context.Context, originID int, radiusKm float64) ([]*NearbyHospital, error) {
	origin, err := d.Hospital(ctx, originID)
	if err != nil {
		return nil, err
	}
	if !origin.HasCoordinates() {
		return nil, httpx.Validation(fmt.Sprintf("hospital %d has no registered coordinates", originID))
	}
	return d.nearbyPoint(ctx, *origin.Latitude, *origin.Longitude, radiusKm, &originID)
}

// NearbyPoint lists the hospitals within radiusKm of an arbitrary coordinate,
// closest first.
func (d *Directory) NearbyPoint(ctx context.Context, lat, lng, radiusKm float64) ([]*NearbyHospital, error) {
	return d.nearbyPoint(ctx, lat, lng, radiusKm, nil)
}

func (d *Directory) nearbyPoint(ctx context.Context, lat, lng, radiusKm float64, excludeID *int) ([]*NearbyHospital, error) {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}

	candidates, err := d.repo.HospitalsWithCoordinates(ctx)
	if err != nil {
		return nil, httpx.Internal(err, "failed to load hospitals")
	}

	nearby := make([]*NearbyHospital, 0)
	for _, h := range candidates {
		if excludeID != nil && h.ID == *excludeID {
			continue
		}
		dist := haversineKm(lat, lng, *h.Latitude, *h.Longitude)
		if dist <= radiusKm {
			nearby = append(nearby, &NearbyHospital{Hospital: h, DistanceKm: aggregate.Round2(dist)})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	return nearby, nil
}

func (d *Directory) Services(ctx context.Context, f ServiceFilter, limit, offset int) ([]*Service, int, error) {
	services, total, err := d.repo.ListServices(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, httpx.Internal(err, "failed to list services")
	}
	return services, total, nil
}

// Service returns a care service by its registry key.
func (d *Directory) Service(ctx context.Context, key int) (*Service, error) {
	s, err := d.repo.ServiceByKey(ctx, key)
	if err != nil {
		return nil, httpx.Internal(err, "failed to load service")
	}
	if s == nil {
		return nil, httpx.NotFound(fmt.Sprintf("service %d not found", key))
	}
	return s, nil
}

// KeysBySpeciality returns the service keys whose speciality contains the
// given pattern, case-insensitively.
func (d *Directory) KeysBySpeciality(ctx context.Context, pattern string) ([]int, error) {
	keys, err := d.repo.ServiceKeysBySpeciality(ctx, pattern)
	if err != nil {
		return nil, httpx.Internal(err, "failed to resolve speciality")
	}
	return keys, nil
}

// LoadHospitals replaces-or-inserts registry hospitals, used by the seed
// command and kept idempotent so reseeding is safe.
func (d *Directory) LoadHospitals(ctx context.Context, hospitals []*Hospital) (int, error) {
	n, err := d.repo.UpsertHospitals(ctx, hospitals)
	if err != nil {
		return 0, httpx.Internal(err, "failed to load hospitals")
	}
	return n, nil
}

// LoadServices replaces-or-inserts registry services.
func (d *Directory) LoadServices(ctx context.Context, services []*Service) (int, error) {
	n, err := d.repo.UpsertServices(ctx, services)
	if err != nil {
		return 0, httpx.Internal(err, "failed to load services")
	}
	return n, nil
}

// haversineKm computes the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
