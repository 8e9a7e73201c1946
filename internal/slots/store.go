package slots

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract for the slot inventory.
type Store interface {
	Create(ctx context.Context, slot *Slot) error
	CreateBatch(ctx context.Context, batch []Slot) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// ListOpenByMedics returns unreserved slots belonging to any of the
	// given medics, ordered by start time.
	ListOpenByMedics(ctx context.Context, medicIDs []uuid.UUID) ([]Slot, error)
}

// InMemoryStore keeps the inventory in memory for dev mode and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]*Slot
}

// NewInMemoryStore creates an empty in-memory inventory.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{slots: make(map[uuid.UUID]*Slot)}
}

func (s *InMemoryStore) Create(ctx context.Context, slot *Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(slot)
}

func (s *InMemoryStore) CreateBatch(ctx context.Context, batch []Slot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := 0
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return created, err
		}
		if err := s.createLocked(&batch[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *InMemoryStore) createLocked(slot *Slot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	stored := *slot
	s.slots[slot.ID] = &stored
	return nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (s *InMemoryStore) ListOpenByMedics(ctx context.Context, medicIDs []uuid.UUID) ([]Slot, error) {
	wanted := make(map[uuid.UUID]struct{}, len(medicIDs))
	for _, id := range medicIDs {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var open []Slot
	for _, slot := range s.slots {
		if slot.Reserved {
			continue
		}
		if _, ok := wanted[slot.MedicID]; !ok {
			continue
		}
		open = append(open, *slot)
	}
	sort.Slice(open, func(i, j int) bool { return open[i].StartsAt.Before(open[j].StartsAt) })
	return open, nil
}

// Claim atomically marks a slot reserved. At most one caller ever gets
// claimed=true for a given slot; the reservation engine builds on this.
func (s *InMemoryStore) Claim(ctx context.Context, id uuid.UUID) (*Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if slot.Reserved {
		return nil, ErrSlotTaken
	}
	slot.Reserved = true
	slot.UpdatedAt = time.Now().UTC()
	copied := *slot
	return &copied, nil
}
