package catalog

import "github.com/google/uuid"

// DemoData returns a small Chilean catalogue for memory mode and local
// development. IDs are fixed so requests can be replayed across restarts.
func DemoData() (regions []Region, communes []Commune, areas []Area, medics []Medic) {
	metropolitana := Region{ID: uuid.MustParse("0b7a3a6e-90c1-4f6e-9b3a-0d1f5a2c9101"), Name: "Región Metropolitana"}
	valparaiso := Region{ID: uuid.MustParse("3f1c5d8a-71b2-4f0e-8a4d-6c2e9b3f7202"), Name: "Valparaíso"}

	santiago := Commune{ID: uuid.MustParse("6a2d9e4b-12c3-4a5e-bf6d-8e1a7c4d9303"), RegionID: metropolitana.ID, Name: "Santiago"}
	providencia := Commune{ID: uuid.MustParse("9c4e1f6d-34a5-4b7c-8d9e-0f2b6a8c1404"), RegionID: metropolitana.ID, Name: "Providencia"}
	vina := Commune{ID: uuid.MustParse("2e6f3a8c-56b7-4d9e-a1f2-4c8d0b6e3505"), RegionID: valparaiso.ID, Name: "Viña del Mar"}

	general := Area{ID: uuid.MustParse("5a8b1c4d-78e9-4f0a-b2c3-6d0e4f8a5606"), Name: "Medicina General"}
	pediatria := Area{ID: uuid.MustParse("8d0e4f7a-90b1-4c2d-93e4-8f2a6b0c7707"), Name: "Pediatría"}

	medics = []Medic{
		{
			ID:        uuid.MustParse("1f3a5c7e-9b0d-4e2f-a4b6-0c8d2e4f9808"),
			FullName:  "Dra. Carolina Fuentes",
			Specialty: "Medicina Familiar",
			AreaID:    general.ID,
			RegionID:  metropolitana.ID,
			CommuneID: santiago.ID,
		},
		{
			ID:        uuid.MustParse("4b6d8f0a-2c3e-4f5a-b7c9-2e0f4a6b1909"),
			FullName:  "Dr. Andrés Soto",
			Specialty: "Medicina Familiar",
			AreaID:    general.ID,
			RegionID:  metropolitana.ID,
			CommuneID: santiago.ID,
		},
		{
			ID:        uuid.MustParse("7c9e1b3d-4f5a-4b6c-8d0e-4a2b6c8d3010"),
			FullName:  "Dra. Paula Riquelme",
			Specialty: "Pediatría General",
			AreaID:    pediatria.ID,
			RegionID:  metropolitana.ID,
			CommuneID: providencia.ID,
		},
		{
			ID:        uuid.MustParse("0d2f4a6c-5e6b-4c7d-9e1f-6b4c8d0e5111"),
			FullName:  "Dr. Jorge Valdés",
			Specialty: "Medicina Interna",
			AreaID:    general.ID,
			RegionID:  valparaiso.ID,
			CommuneID: vina.ID,
		},
	}

	return []Region{metropolitana, valparaiso},
		[]Commune{santiago, providencia, vina},
		[]Area{general, pediatria},
		medics
}
