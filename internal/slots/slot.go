// Package slots owns the inventory of bookable time intervals. A slot is
// immutable after creation except for its reserved flag, which flips
// false -> true exactly once when the reservation engine claims it.
package slots

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSlotNotFound is returned when a slot id is not on record.
	ErrSlotNotFound = errors.New("slots: slot not found")
	// ErrSlotTaken is returned when a claim races a slot that is already
	// reserved.
	ErrSlotTaken = errors.New("slots: slot already reserved")
)

// Slot is one bookable interval for one medic.
type Slot struct {
	ID        uuid.UUID `json:"id"`
	MedicID   uuid.UUID `json:"medic_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Reserved  bool      `json:"reserved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks interval sanity before insertion.
func (s *Slot) Validate() error {
	if s.MedicID == uuid.Nil {
		return errors.New("slots: medic id required")
	}
	if s.StartsAt.IsZero() || s.EndsAt.IsZero() {
		return errors.New("slots: start and end required")
	}
	if !s.EndsAt.After(s.StartsAt) {
		return errors.New("slots: end must be after start")
	}
	return nil
}
