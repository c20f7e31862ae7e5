package emergency

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Repository backed by PostgreSQL.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const snapshotColumns = `id, hospital_id, hospital_name, hospital_address,
	emergency_type_code, emergency_type_description, status, last_update, submitted_at, extracted_at,
	triage_red_time, triage_red_length, triage_orange_time, triage_orange_length,
	triage_yellow_time, triage_yellow_length, triage_green_time, triage_green_length,
	triage_blue_time, triage_blue_length,
	obs_red_time, obs_red_length, obs_orange_time, obs_orange_length,
	obs_yellow_time, obs_yellow_length, obs_green_time, obs_green_length,
	obs_blue_time, obs_blue_length,
	created_at, updated_at`

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.HospitalID, &s.HospitalName, &s.HospitalAddress,
		&s.TypeCode, &s.TypeDescription, &s.Status, &s.LastUpdate, &s.SubmittedAt, &s.ExtractedAt,
		&s.Triage.Red.Time, &s.Triage.Red.Length, &s.Triage.Orange.Time, &s.Triage.Orange.Length,
		&s.Triage.Yellow.Time, &s.Triage.Yellow.Length, &s.Triage.Green.Time, &s.Triage.Green.Length,
		&s.Triage.Blue.Time, &s.Triage.Blue.Length,
		&s.Observation.Red.Time, &s.Observation.Red.Length, &s.Observation.Orange.Time, &s.Observation.Orange.Length,
		&s.Observation.Yellow.Time, &s.Observation.Yellow.Length, &s.Observation.Green.Time, &s.Observation.Green.Length,
		&s.Observation.Blue.Time, &s.Observation.Blue.Length,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func applyFilter(b sq.SelectBuilder, f Filter) sq.SelectBuilder {
	if f.HospitalID != nil {
		b = b.Where(sq.Eq{"hospital_id": *f.HospitalID})
	}
	if f.TypeCode != "" {
		b = b.Where(sq.Eq{"emergency_type_code": f.TypeCode})
	}
	if len(f.TypeSearch) > 0 {
		or := sq.Or{}
		for _, term := range f.TypeSearch {
			or = append(or, sq.ILike{"emergency_type_description": "%" + term + "%"})
		}
		b = b.Where(or)
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": f.Status})
	}
	if f.OpenOnly {
		b = b.Where(sq.Eq{"status": StatusOpen})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"last_update": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.Lt{"last_update": *f.To})
	}
	return b
}

func (r *postgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Snapshot, int, error) {
	countSQL, countArgs, err := applyFilter(psql.Select("COUNT(*)").From("emergency_snapshots"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build emergency count query: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count emergencies: %w", err)
	}

	query, args, err := applyFilter(psql.Select(snapshotColumns).From("emergency_snapshots"), f).
		OrderBy("last_update DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build emergency list query: %w", err)
	}
	snapshots, err := r.query(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	query, args, err := psql.Select(snapshotColumns).From("emergency_snapshots").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build emergency query: %w", err)
	}
	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get emergency %s: %w", id, err)
	}
	return s, nil
}

func (r *postgresRepository) Fetch(ctx context.Context, f Filter) ([]*Snapshot, error) {
	query, args, err := applyFilter(psql.Select(snapshotColumns).From("emergency_snapshots"), f).
		OrderBy("last_update ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build emergency fetch query: %w", err)
	}
	return r.query(ctx, query, args)
}

func (r *postgresRepository) query(ctx context.Context, query string, args []interface{}) ([]*Snapshot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query emergencies: %w", err)
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan emergency: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *postgresRepository) BulkUpsert(ctx context.Context, snapshots []*Snapshot) (int, int, error) {
	if len(snapshots) == 0 {
		return 0, 0, nil
	}
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, s := range snapshots {
		batch.Queue(`
			INSERT INTO emergency_snapshots (
				id, hospital_id, hospital_name, hospital_address,
				emergency_type_code, emergency_type_description, status, last_update, submitted_at, extracted_at,
				triage_red_time, triage_red_length, triage_orange_time, triage_orange_length,
				triage_yellow_time, triage_yellow_length, triage_green_time, triage_green_length,
				triage_blue_time, triage_blue_length,
				obs_red_time, obs_red_length, obs_orange_time, obs_orange_length,
				obs_yellow_time, obs_yellow_length, obs_green_time, obs_green_length,
				obs_blue_time, obs_blue_length,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
				$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
				$31, $31)
			ON CONFLICT (hospital_id, emergency_type_code, last_update) DO UPDATE SET
				hospital_name = EXCLUDED.hospital_name,
				hospital_address = EXCLUDED.hospital_address,
				emergency_type_description = EXCLUDED.emergency_type_description,
				status = EXCLUDED.status,
				submitted_at = EXCLUDED.submitted_at,
				extracted_at = EXCLUDED.extracted_at,
				triage_red_time = EXCLUDED.triage_red_time,
				triage_red_length = EXCLUDED.triage_red_length,
				triage_orange_time = EXCLUDED.triage_orange_time,
				triage_orange_length = EXCLUDED.triage_orange_length,
				triage_yellow_time = EXCLUDED.triage_yellow_time,
				triage_yellow_length = EXCLUDED.triage_yellow_length,
				triage_green_time = EXCLUDED.triage_green_time,
				triage_green_length = EXCLUDED.triage_green_length,
				triage_blue_time = EXCLUDED.triage_blue_time,
				triage_blue_length = EXCLUDED.triage_blue_length,
				obs_red_time = EXCLUDED.obs_red_time,
				obs_red_length = EXCLUDED.obs_red_length,
				obs_orange_time = EXCLUDED.obs_orange_time,
				obs_orange_length = EXCLUDED.obs_orange_length,
				obs_yellow_time = EXCLUDED.obs_yellow_time,
				obs_yellow_length = EXCLUDED.obs_yellow_length,
				obs_green_time = EXCLUDED.obs_green_time,
				obs_green_length = EXCLUDED.obs_green_length,
				obs_blue_time = EXCLUDED.obs_blue_time,
				obs_blue_length = EXCLUDED.obs_blue_length,
				updated_at = EXCLUDED.updated_at
			RETURNING (xmax = 0)`,
			s.ID, s.HospitalID, s.HospitalName, s.HospitalAddress,
			s.TypeCode, s.TypeDescription, s.Status, s.LastUpdate, s.SubmittedAt, s.ExtractedAt,
			s.Triage.Red.Time, s.Triage.Red.Length, s.Triage.Orange.Time, s.Triage.Orange.Length,
			s.Triage.Yellow.Time, s.Triage.Yellow.Length, s.Triage.Green.Time, s.Triage.Green.Length,
			s.Triage.Blue.Time, s.Triage.Blue.Length,
			s.Observation.Red.Time, s.Observation.Red.Length, s.Observation.Orange.Time, s.Observation.Orange.Length,
			s.Observation.Yellow.Time, s.Observation.Yellow.Length, s.Observation.Green.Time, s.Observation.Green.Length,
			s.Observation.Blue.Time, s.Observation.Blue.Length,
			now)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted, updated := 0, 0
	for range snapshots {
		var isInsert bool
		if err := br.QueryRow().Scan(&isInsert); err != nil {
			return 0, 0, fmt.Errorf("upsert emergency snapshot: %w", err)
		}
		if isInsert {
			inserted++
		} else {
			updated++
		}
	}
	return inserted, updated, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM emergency_snapshots").Scan(&n); err != nil {
		return 0, fmt.Errorf("count emergencies: %w", err)
	}
	return n, nil
}
