package consultation

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
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

const recordColumns = `id, hospital_id, hospital_name, service_key,
	wait_normal, wait_priority, wait_high_priority,
	day, week, quarter, month, year, number_of_people,
	priority_description, speciality, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.HospitalID, &r.HospitalName, &r.ServiceKey,
		&r.WaitNormal, &r.WaitPriority, &r.WaitHighPriority,
		&r.Day, &r.Week, &r.Quarter, &r.Month, &r.Year, &r.NumberOfPeople,
		&r.PriorityDescription, &r.Speciality, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func applyFilter(b sq.SelectBuilder, f Filter) sq.SelectBuilder {
	if f.HospitalID != nil {
		b = b.Where(sq.Eq{"hospital_id": *f.HospitalID})
	}
	if f.HospitalName != "" {
		b = b.Where(sq.ILike{"hospital_name": "%" + f.HospitalName + "%"})
	}
	if len(f.ServiceKeys) > 0 {
		b = b.Where(sq.Eq{"service_key": f.ServiceKeys})
	}
	if f.Year != nil {
		b = b.Where(sq.Eq{"year": *f.Year})
	}
	if f.Month != "" {
		b = b.Where(sq.ILike{"month": "%" + f.Month + "%"})
	}
	if f.Speciality != "" {
		b = b.Where(sq.Eq{"speciality": f.Speciality})
	}
	return b
}

func (r *postgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
	countSQL, countArgs, err := applyFilter(psql.Select("COUNT(*)").From("consultation_records"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build consultation count query: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count consultations: %w", err)
	}

	query, args, err := applyFilter(psql.Select(recordColumns).From("consultation_records"), f).
		OrderBy("year DESC, week DESC, day DESC, hospital_id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build consultation list query: %w", err)
	}
	records, err := r.query(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *postgresRepository) Fetch(ctx context.Context, f Filter) ([]*Record, error) {
	query, args, err := applyFilter(psql.Select(recordColumns).From("consultation_records"), f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build consultation fetch query: %w", err)
	}
	return r.query(ctx, query, args)
}

func (r *postgresRepository) query(ctx context.Context, query string, args []interface{}) ([]*Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consultation: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *postgresRepository) BulkUpsert(ctx context.Context, records []*Record) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO consultation_records (
				id, hospital_id, hospital_name, service_key,
				wait_normal, wait_priority, wait_high_priority,
				day, week, quarter, month, year, number_of_people,
				priority_description, speciality, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
			ON CONFLICT (hospital_id, service_key, year, month, day) DO UPDATE SET
				hospital_name = EXCLUDED.hospital_name,
				wait_normal = EXCLUDED.wait_normal,
				wait_priority = EXCLUDED.wait_priority,
				wait_high_priority = EXCLUDED.wait_high_priority,
				week = EXCLUDED.week,
				quarter = EXCLUDED.quarter,
				number_of_people = EXCLUDED.number_of_people,
				priority_description = EXCLUDED.priority_description,
				speciality = EXCLUDED.speciality,
				updated_at = EXCLUDED.updated_at
			RETURNING (xmax = 0)`,
			rec.ID, rec.HospitalID, rec.HospitalName, rec.ServiceKey,
			rec.WaitNormal, rec.WaitPriority, rec.WaitHighPriority,
			rec.Day, rec.Week, rec.Quarter, rec.Month, rec.Year, rec.NumberOfPeople,
			rec.PriorityDescription, rec.Speciality, now)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted, updated := 0, 0
	for range records {
		var isInsert bool
		if err := br.QueryRow().Scan(&isInsert); err != nil {
			return 0, 0, fmt.Errorf("upsert consultation record: %w", err)
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM consultation_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count consultations: %w", err)
	}
	return n, nil
}
