package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Repository exposes read access to the reference catalogue.
type Repository interface {
	ListRegions(ctx context.Context) ([]Region, error)
	ListCommunes(ctx context.Context) ([]Commune, error)
	ListAreas(ctx context.Context) ([]Area, error)
	ListMedics(ctx context.Context) ([]Medic, error)
	MedicIDsMatching(ctx context.Context, filter MedicFilter) ([]uuid.UUID, error)
}

// InMemoryRepository serves the catalogue from memory. It backs memory mode
// and tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	regions  []Region
	communes []Commune
	areas    []Area
	medics   []Medic
}

// NewInMemoryRepository creates a repository preloaded with the given data.
func NewInMemoryRepository(regions []Region, communes []Commune, areas []Area, medics []Medic) *InMemoryRepository {
	return &InMemoryRepository{
		regions:  regions,
		communes: communes,
		areas:    areas,
		medics:   medics,
	}
}

func (r *InMemoryRepository) ListRegions(ctx context.Context) ([]Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Region(nil), r.regions...), nil
}

func (r *InMemoryRepository) ListCommunes(ctx context.Context) ([]Commune, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Commune(nil), r.communes...), nil
}

func (r *InMemoryRepository) ListAreas(ctx context.Context) ([]Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Area(nil), r.areas...), nil
}

func (r *InMemoryRepository) ListMedics(ctx context.Context) ([]Medic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Medic(nil), r.medics...), nil
}

// MedicIDsMatching returns the ids of medics matching the filter. Specialty
// comparison is case-insensitive, mirroring the ILIKE match in Postgres.
func (r *InMemoryRepository) MedicIDsMatching(ctx context.Context, filter MedicFilter) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0)
	for _, m := range r.medics {
		if m.RegionID != filter.RegionID || m.CommuneID != filter.CommuneID || m.AreaID != filter.AreaID {
			continue
		}
		if !strings.EqualFold(m.Specialty, filter.Specialty) {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}
