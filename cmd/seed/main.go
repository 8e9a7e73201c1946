// Command seed loads the demo catalogue and a week of open slots into
// the database. It is idempotent: rows already present are skipped.
package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/andesalud/citas-platform/internal/catalog"
)

func main() {
	_ = godotenv.Load()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	regions, communes, areas, medics := catalog.DemoData()

	for _, r := range regions {
		if _, err := pool.Exec(ctx,
			`INSERT INTO regions (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			r.ID, r.Name,
		); err != nil {
			log.Fatalf("seed region %s: %v", r.Name, err)
		}
	}
	for _, c := range communes {
		if _, err := pool.Exec(ctx,
			`INSERT INTO communes (id, region_id, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			c.ID, c.RegionID, c.Name,
		); err != nil {
			log.Fatalf("seed commune %s: %v", c.Name, err)
		}
	}
	for _, a := range areas {
		if _, err := pool.Exec(ctx,
			`INSERT INTO areas (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			a.ID, a.Name,
		); err != nil {
			log.Fatalf("seed area %s: %v", a.Name, err)
		}
	}
	for _, m := range medics {
		if _, err := pool.Exec(ctx,
			`INSERT INTO medics (id, full_name, specialty, area_id, region_id, commune_id)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			m.ID, m.FullName, m.Specialty, m.AreaID, m.RegionID, m.CommuneID,
		); err != nil {
			log.Fatalf("seed medic %s: %v", m.FullName, err)
		}
	}

	// Half-hour slots, next seven week days, 09:00 to 12:00 UTC.
	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	created := 0
	for d := 0; d < 7; d++ {
		date := day.AddDate(0, 0, d)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		for _, m := range medics {
			for h := 9; h < 12; h++ {
				for _, min := range []int{0, 30} {
					start := time.Date(date.Year(), date.Month(), date.Day(), h, min, 0, 0, time.UTC)
					tag, err := pool.Exec(ctx,
						`INSERT INTO available_slots (medic_id, starts_at, ends_at)
						 SELECT $1, $2, $3
						 WHERE NOT EXISTS (
						     SELECT 1 FROM available_slots
						      WHERE medic_id = $1 AND starts_at = $2
						 )`,
						m.ID, start, start.Add(30*time.Minute),
					)
					if err != nil {
						log.Fatalf("seed slot: %v", err)
					}
					created += int(tag.RowsAffected())
				}
			}
		}
	}

	log.Printf("seed complete: %d medics, %d new slots", len(medics), created)
}
