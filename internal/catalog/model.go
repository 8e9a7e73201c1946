// Package catalog holds the static reference data the booking flow filters
// against: regions, communes, medical areas and the medics that belong to
// them. The data is read-only at runtime; writes happen through seeding.
package catalog

import "github.com/google/uuid"

// Region is a top-level administrative division.
type Region struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Commune belongs to a region.
type Commune struct {
	ID       uuid.UUID `json:"id"`
	RegionID uuid.UUID `json:"region_id"`
	Name     string    `json:"name"`
}

// Area is a medical area (e.g. general medicine, pediatrics).
type Area struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Medic is a care provider with the attributes availability filters on.
type Medic struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Specialty string    `json:"specialty"`
	AreaID    uuid.UUID `json:"area_id"`
	RegionID  uuid.UUID `json:"region_id"`
	CommuneID uuid.UUID `json:"commune_id"`
}

// MedicFilter selects medics by location, area and specialty. Region,
// commune and area match exactly; specialty matches case-insensitively.
type MedicFilter struct {
	RegionID  uuid.UUID
	CommuneID uuid.UUID
	AreaID    uuid.UUID
	Specialty string
}
