package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository serves the catalogue from the relational database.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("catalog: querier required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListRegions(ctx context.Context) ([]Region, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list regions: %w", err)
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var reg Region
		if err := rows.Scan(&reg.ID, &reg.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan region: %w", err)
		}
		regions = append(regions, reg)
	}
	return regions, rows.Err()
}

func (r *PostgresRepository) ListCommunes(ctx context.Context) ([]Commune, error) {
	rows, err := r.db.Query(ctx, `SELECT id, region_id, name FROM communes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list communes: %w", err)
	}
	defer rows.Close()

	var communes []Commune
	for rows.Next() {
		var c Commune
		if err := rows.Scan(&c.ID, &c.RegionID, &c.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan commune: %w", err)
		}
		communes = append(communes, c)
	}
	return communes, rows.Err()
}

func (r *PostgresRepository) ListAreas(ctx context.Context) ([]Area, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM areas ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list areas: %w", err)
	}
	defer rows.Close()

	var areas []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan area: %w", err)
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (r *PostgresRepository) ListMedics(ctx context.Context) ([]Medic, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, full_name, specialty, area_id, region_id, commune_id
		FROM medics
		ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list medics: %w", err)
	}
	defer rows.Close()

	var medics []Medic
	for rows.Next() {
		var m Medic
		if err := rows.Scan(&m.ID, &m.FullName, &m.Specialty, &m.AreaID, &m.RegionID, &m.CommuneID); err != nil {
			return nil, fmt.Errorf("catalog: scan medic: %w", err)
		}
		medics = append(medics, m)
	}
	return medics, rows.Err()
}

// MedicIDsMatching resolves the filter to medic ids. Specialty uses ILIKE so
// "PEDIATRIA" and "pediatria" select the same medics.
func (r *PostgresRepository) MedicIDsMatching(ctx context.Context, filter MedicFilter) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id
		FROM medics
		WHERE region_id = $1 AND commune_id = $2 AND area_id = $3 AND specialty ILIKE $4
	`, filter.RegionID, filter.CommuneID, filter.AreaID, filter.Specialty)
	if err != nil {
		return nil, fmt.Errorf("catalog: match medics: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("catalog: scan medic id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
