package reference

import (
	"context"
	"errors"
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

const hospitalColumns = "id, name, description, typology, district, region, address, phone, email, latitude, longitude, created_at, updated_at"

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Typology, &h.District, &h.Region,
		&h.Address, &h.Phone, &h.Email, &h.Latitude, &h.Longitude, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func hospitalConditions(b sq.SelectBuilder, f HospitalFilter) sq.SelectBuilder {
	if f.District != "" {
		b = b.Where(sq.Eq{"district": f.District})
	}
	if f.Region != "" {
		b = b.Where(sq.Eq{"region": f.Region})
	}
	if f.Typology != "" {
		b = b.Where(sq.Eq{"typology": f.Typology})
	}
	if f.Search != "" {
		b = b.Where(sq.ILike{"name": "%" + f.Search + "%"})
	}
	return b
}

func (r *postgresRepository) ListHospitals(ctx context.Context, f HospitalFilter, limit, offset int) ([]*Hospital, int, error) {
	countSQL, countArgs, err := hospitalConditions(psql.Select("COUNT(*)").From("hospitals"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build hospital count query: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count hospitals: %w", err)
	}

	query, args, err := hospitalConditions(psql.Select(hospitalColumns).From("hospitals"), f).
		OrderBy("name ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build hospital list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list hospitals: %w", err)
	}
	defer rows.Close()

	var hospitals []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, total, rows.Err()
}

func (r *postgresRepository) HospitalByID(ctx context.Context, id int) (*Hospital, error) {
	query, args, err := psql.Select(hospitalColumns).From("hospitals").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build hospital query: %w", err)
	}
	h, err := scanHospital(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get hospital %d: %w", id, err)
	}
	return h, nil
}

func (r *postgresRepository) HospitalsByIDs(ctx context.Context, ids []int) (map[int]*Hospital, error) {
	if len(ids) == 0 {
		return map[int]*Hospital{}, nil
	}
	query, args, err := psql.Select(hospitalColumns).From("hospitals").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build hospitals query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get hospitals by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int]*Hospital, len(ids))
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hospital: %w", err)
		}
		out[h.ID] = h
	}
	return out, rows.Err()
}

func (r *postgresRepository) HospitalsWithCoordinates(ctx context.Context) ([]*Hospital, error) {
	query, args, err := psql.Select(hospitalColumns).From("hospitals").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build hospitals query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get hospitals with coordinates: %w", err)
	}
	defer rows.Close()

	var hospitals []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}

func (r *postgresRepository) UpsertHospitals(ctx context.Context, hospitals []*Hospital) (int, error) {
	if len(hospitals) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, h := range hospitals {
		batch.Queue(`
			INSERT INTO hospitals (id, name, description, typology, district, region, address, phone, email, latitude, longitude, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				typology = EXCLUDED.typology,
				district = EXCLUDED.district,
				region = EXCLUDED.region,
				address = EXCLUDED.address,
				phone = EXCLUDED.phone,
				email = EXCLUDED.email,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				updated_at = EXCLUDED.updated_at`,
			h.ID, h.Name, h.Description, h.Typology, h.District, h.Region,
			h.Address, h.Phone, h.Email, h.Latitude, h.Longitude, now)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range hospitals {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("upsert hospital: %w", err)
		}
	}
	return len(hospitals), nil
}

func (r *postgresRepository) CountHospitals(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM hospitals").Scan(&n); err != nil {
		return 0, fmt.Errorf("count hospitals: %w", err)
	}
	return n, nil
}

const serviceColumns = "key, name, speciality, priority_code, priority_description, type_code, type_description, created_at, updated_at"

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.Key, &s.Name, &s.Speciality, &s.PriorityCode, &s.PriorityDescription,
		&s.TypeCode, &s.TypeDescription, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) ListServices(ctx context.Context, f ServiceFilter, limit, offset int) ([]*Service, int, error) {
	conditions := func(b sq.SelectBuilder) sq.SelectBuilder {
		if f.TypeCode != "" {
			b = b.Where(sq.Eq{"type_code": f.TypeCode})
		}
		if f.Speciality != "" {
			b = b.Where(sq.ILike{"speciality": "%" + f.Speciality + "%"})
		}
		if f.Search != "" {
			b = b.Where(sq.ILike{"name": "%" + f.Search + "%"})
		}
		return b
	}

	countSQL, countArgs, err := conditions(psql.Select("COUNT(*)").From("services")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build service count query: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	query, args, err := conditions(psql.Select(serviceColumns).From("services")).
		OrderBy("key ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build service list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, total, rows.Err()
}

func (r *postgresRepository) ServiceByKey(ctx context.Context, key int) (*Service, error) {
	query, args, err := psql.Select(serviceColumns).From("services").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build service query: %w", err)
	}
	s, err := scanService(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get service %d: %w", key, err)
	}
	return s, nil
}

func (r *postgresRepository) ServiceKeysBySpeciality(ctx context.Context, pattern string) ([]int, error) {
	query, args, err := psql.Select("key").From("services").
		Where(sq.ILike{"speciality": "%" + pattern + "%"}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build service keys query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get service keys by speciality: %w", err)
	}
	defer rows.Close()

	var keys []int
	for rows.Next() {
		var k int
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan service key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *postgresRepository) UpsertServices(ctx context.Context, services []*Service) (int, error) {
	if len(services) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, s := range services {
		batch.Queue(`
			INSERT INTO services (key, name, speciality, priority_code, priority_description, type_code, type_description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (key) DO UPDATE SET
				name = EXCLUDED.name,
				speciality = EXCLUDED.speciality,
				priority_code = EXCLUDED.priority_code,
				priority_description = EXCLUDED.priority_description,
				type_code = EXCLUDED.type_code,
				type_description = EXCLUDED.type_description,
				updated_at = EXCLUDED.updated_at`,
			s.Key, s.Name, s.Speciality, s.PriorityCode, s.PriorityDescription,
			s.TypeCode, s.TypeDescription, now)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range services {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("upsert service: %w", err)
		}
	}
	return len(services), nil
}

func (r *postgresRepository) CountServices(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM services").Scan(&n); err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return n, nil
}
