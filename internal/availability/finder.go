// Package availability answers "which slots are free" queries. It is
// read-only: nothing here ever mutates the inventory.
package availability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andesalud/citas-platform/internal/catalog"
	"github.com/andesalud/citas-platform/internal/slots"
	"github.com/andesalud/citas-platform/pkg/logging"
)

var finderTracer = otel.Tracer("citas.internal.availability")

// ErrInvalidFilter is returned when the query filter is incomplete.
var ErrInvalidFilter = errors.New("availability: invalid filter")

// Request is an availability query.
type Request struct {
	RegionID  uuid.UUID
	CommuneID uuid.UUID
	AreaID    uuid.UUID
	Specialty string
	TimeOfDay Window
}

// OpenSlot is one free interval offered to the caller. When several medics
// share the same interval only one representative slot id is returned;
// callers may rely on the interval, not on which id was picked.
type OpenSlot struct {
	ID       uuid.UUID `json:"id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Finder resolves availability queries against the catalogue and the slot
// inventory.
type Finder struct {
	catalog catalog.Repository
	slots   slots.Store
	logger  *logging.Logger
}

// NewFinder constructs an availability finder.
func NewFinder(catalogRepo catalog.Repository, slotStore slots.Store, logger *logging.Logger) *Finder {
	if catalogRepo == nil {
		panic("availability: catalog repository required")
	}
	if slotStore == nil {
		panic("availability: slot store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Finder{catalog: catalogRepo, slots: slotStore, logger: logger}
}

// Find returns the free slots matching the request, deduplicated to one
// entry per distinct interval. An empty result is not an error.
func (f *Finder) Find(ctx context.Context, req Request) ([]OpenSlot, error) {
	ctx, span := finderTracer.Start(ctx, "availability.find")
	defer span.End()
	span.SetAttributes(
		attribute.String("citas.region_id", req.RegionID.String()),
		attribute.String("citas.specialty", req.Specialty),
		attribute.String("citas.time_of_day", string(req.TimeOfDay)),
	)

	if err := req.validate(); err != nil {
		return nil, err
	}

	medicIDs, err := f.catalog.MedicIDsMatching(ctx, catalog.MedicFilter{
		RegionID:  req.RegionID,
		CommuneID: req.CommuneID,
		AreaID:    req.AreaID,
		Specialty: req.Specialty,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("availability: resolve medics: %w", err)
	}
	if len(medicIDs) == 0 {
		return []OpenSlot{}, nil
	}

	open, err := f.slots.ListOpenByMedics(ctx, medicIDs)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("availability: list open slots: %w", err)
	}

	result := dedupeByInterval(filterByWindow(open, req.TimeOfDay))
	f.logger.Debug("availability resolved",
		"medics", len(medicIDs),
		"open_slots", len(open),
		"unique_intervals", len(result),
	)
	return result, nil
}

func (r Request) validate() error {
	if r.RegionID == uuid.Nil || r.CommuneID == uuid.Nil || r.AreaID == uuid.Nil {
		return fmt.Errorf("%w: region, commune and area are required", ErrInvalidFilter)
	}
	if r.Specialty == "" {
		return fmt.Errorf("%w: specialty is required", ErrInvalidFilter)
	}
	return nil
}

func filterByWindow(open []slots.Slot, window Window) []slots.Slot {
	matched := open[:0:0]
	for _, slot := range open {
		if window.Contains(slot.StartsAt, slot.EndsAt) {
			matched = append(matched, slot)
		}
	}
	return matched
}

// dedupeByInterval keeps one slot per distinct (start, end) pair. The pick
// is deterministic (lowest id) so repeated queries agree; the contract only
// promises the interval.
func dedupeByInterval(open []slots.Slot) []OpenSlot {
	type intervalKey struct {
		start int64
		end   int64
	}
	chosen := make(map[intervalKey]slots.Slot, len(open))
	for _, slot := range open {
		key := intervalKey{start: slot.StartsAt.Unix(), end: slot.EndsAt.Unix()}
		current, ok := chosen[key]
		if !ok || bytes.Compare(slot.ID[:], current.ID[:]) < 0 {
			chosen[key] = slot
		}
	}

	result := make([]OpenSlot, 0, len(chosen))
	for _, slot := range chosen {
		result = append(result, OpenSlot{ID: slot.ID, StartsAt: slot.StartsAt, EndsAt: slot.EndsAt})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartsAt.Equal(result[j].StartsAt) {
			return result[i].StartsAt.Before(result[j].StartsAt)
		}
		return result[i].EndsAt.Before(result[j].EndsAt)
	})
	return result
}
