package emergency

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter is the match stage of emergency queries, pushed down to SQL by the
// repository. TypeSearch terms are OR-ed case-insensitive substring matches
// on the type description.
type Filter struct {
	HospitalID *int
	TypeCode   string
	TypeSearch []string
	Status     string
	OpenOnly   bool
	From       *time.Time // inclusive, on last_update
	To         *time.Time // exclusive
}

type Repository interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]*Snapshot, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	// Fetch returns all matching snapshots without pagination, for reports.
	Fetch(ctx context.Context, f Filter) ([]*Snapshot, error)
	// BulkUpsert replaces-or-inserts snapshots on their natural key and
	// reports how many rows were inserted vs updated.
	BulkUpsert(ctx context.Context, snapshots []*Snapshot) (inserted, updated int, err error)
	Count(ctx context.Context) (int, error)
}
