package reference

import "context"

// HospitalFilter narrows hospital listings. String fields are exact matches
// except Search, which is a case-insensitive substring match on the name.
type HospitalFilter struct {
	District string
	Region   string
	Typology string
	Search   string
}

// ServiceFilter narrows care-service listings. TypeCode is exact; Speciality
// and Search are case-insensitive substring matches.
type ServiceFilter struct {
	TypeCode   string
	Speciality string
	Search     string
}

// Repository is the persistence boundary for registry data. Lookups by
// identifier return (nil, nil) when no row matches; callers decide whether
// absence is an error.
type Repository interface {
	ListHospitals(ctx context.Context, f HospitalFilter, limit, offset int) ([]*Hospital, int, error)
	HospitalByID(ctx context.Context, id int) (*Hospital, error)
	HospitalsByIDs(ctx context.Context, ids []int) (map[int]*Hospital, error)
	HospitalsWithCoordinates(ctx context.Context) ([]*Hospital, error)
	UpsertHospitals(ctx context.Context, hospitals []*Hospital) (int, error)
	CountHospitals(ctx context.Context) (int, error)

	ListServices(ctx context.Context, f ServiceFilter, limit, offset int) ([]*Service, int, error)
	ServiceByKey(ctx context.Context, key int) (*Service, error)
	ServiceKeysBySpeciality(ctx context.Context, pattern string) ([]int, error)
	UpsertServices(ctx context.Context, services []*Service) (int, error)
	CountServices(ctx context.Context) (int, error)
}
