package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestPostgresListRegions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectQuery("SELECT id, name FROM regions").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(uuid.New(), "Región Metropolitana").
			AddRow(uuid.New(), "Valparaíso"))

	regions, err := repo.ListRegions(context.Background())
	if err != nil {
		t.Fatalf("list regions: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresMedicIDsMatchingUsesILike(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	regionID, communeID, areaID := uuid.New(), uuid.New(), uuid.New()
	medicID := uuid.New()

	mock.ExpectQuery("specialty ILIKE").
		WithArgs(regionID, communeID, areaID, "pediatría general").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(medicID))

	ids, err := repo.MedicIDsMatching(context.Background(), MedicFilter{
		RegionID:  regionID,
		CommuneID: communeID,
		AreaID:    areaID,
		Specialty: "pediatría general",
	})
	if err != nil {
		t.Fatalf("match medics: %v", err)
	}
	if len(ids) != 1 || ids[0] != medicID {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
