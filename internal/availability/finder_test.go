package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/andesalud/citas-platform/internal/catalog"
	"github.com/andesalud/citas-platform/internal/slots"
)

type fixture struct {
	finder  *Finder
	store   *slots.InMemoryStore
	request Request
	medics  []catalog.Medic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	regions, communes, areas, medics := catalog.DemoData()
	repo := catalog.NewInMemoryRepository(regions, communes, areas, medics)
	store := slots.NewInMemoryStore()
	return &fixture{
		finder: NewFinder(repo, store, nil),
		store:  store,
		request: Request{
			RegionID:  regions[0].ID,
			CommuneID: communes[0].ID,
			AreaID:    areas[0].ID,
			Specialty: "Medicina Familiar",
		},
		medics: medics,
	}
}

func (f *fixture) addSlot(t *testing.T, medicID uuid.UUID, start, end string) uuid.UUID {
	t.Helper()
	s, e := slotTimes(start, end)
	slot := &slots.Slot{MedicID: medicID, StartsAt: s, EndsAt: e}
	if err := f.store.Create(context.Background(), slot); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot.ID
}

func TestFindReturnsOpenSlots(t *testing.T) {
	f := newFixture(t)
	id := f.addSlot(t, f.medics[0].ID, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")

	got, err := f.finder.Find(context.Background(), f.request)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != id {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestFindEmptyIsNotAnError(t *testing.T) {
	f := newFixture(t)
	got, err := f.finder.Find(context.Background(), f.request)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestFindSpecialtyCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.addSlot(t, f.medics[0].ID, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")

	req := f.request
	req.Specialty = "mEdIcInA fAmIlIaR"
	got, err := f.finder.Find(context.Background(), req)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one slot, got %d", len(got))
	}
}

// Two medics offering the identical interval collapse to one entry.
func TestFindDeduplicatesIntervals(t *testing.T) {
	f := newFixture(t)
	idA := f.addSlot(t, f.medics[0].ID, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")
	idB := f.addSlot(t, f.medics[1].ID, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")
	f.addSlot(t, f.medics[1].ID, "2026-09-01T10:00:00Z", "2026-09-01T11:00:00Z")

	got, err := f.finder.Find(context.Background(), f.request)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 unique intervals, got %d", len(got))
	}
	if got[0].ID != idA && got[0].ID != idB {
		t.Fatalf("representative slot must be one of the duplicates, got %s", got[0].ID)
	}

	// Deterministic pick: querying again yields the same representative.
	again, err := f.finder.Find(context.Background(), f.request)
	if err != nil {
		t.Fatalf("find again: %v", err)
	}
	if again[0].ID != got[0].ID {
		t.Fatal("dedup pick must be stable across queries")
	}
}

func TestFindHonorsTimeWindows(t *testing.T) {
	f := newFixture(t)
	morning := f.addSlot(t, f.medics[0].ID, "2026-09-01T08:00:00Z", "2026-09-01T09:00:00Z")
	lateNight := f.addSlot(t, f.medics[0].ID, "2026-09-01T23:00:00Z", "2026-09-01T23:30:00Z")

	req := f.request
	req.TimeOfDay = WindowNight
	got, err := f.finder.Find(context.Background(), req)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != lateNight {
		t.Fatalf("night query must return only the late slot, got %v", got)
	}

	req.TimeOfDay = WindowMorning
	got, err = f.finder.Find(context.Background(), req)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != morning {
		t.Fatalf("morning query must return only the morning slot, got %v", got)
	}
}

func TestFindExcludesReservedSlots(t *testing.T) {
	f := newFixture(t)
	id := f.addSlot(t, f.medics[0].ID, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")
	if _, err := f.store.Claim(context.Background(), id); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, err := f.finder.Find(context.Background(), f.request)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("reserved slot must not be offered, got %v", got)
	}
}

func TestFindValidatesFilter(t *testing.T) {
	f := newFixture(t)
	req := f.request
	req.Specialty = ""
	if _, err := f.finder.Find(context.Background(), req); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}

	req = f.request
	req.CommuneID = uuid.Nil
	if _, err := f.finder.Find(context.Background(), req); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}
