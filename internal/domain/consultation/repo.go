package consultation

import "context"

// Filter is the match stage of consultation queries. HospitalName and Month
// are case-insensitive substring matches; Speciality is exact.
type Filter struct {
	HospitalID   *int
	HospitalName string
	ServiceKeys  []int
	Year         *int
	Month        string
	Speciality   string
}

type Repository interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error)
	// Fetch returns all matching records without pagination, for reports.
	Fetch(ctx context.Context, f Filter) ([]*Record, error)
	// BulkUpsert replaces-or-inserts records on their natural key and
	// reports how many rows were inserted vs updated.
	BulkUpsert(ctx context.Context, records []*Record) (inserted, updated int, err error)
	Count(ctx context.Context) (int, error)
}
