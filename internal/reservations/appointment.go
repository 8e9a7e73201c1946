// Package reservations converts a free slot into an appointment exactly
// once. All slot mutations in the system funnel through the engine here.
package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var (
	// ErrSlotUnavailable is returned when the slot does not exist, is
	// already reserved, or was claimed by a concurrent caller.
	ErrSlotUnavailable = errors.New("reservations: slot unavailable")
	// ErrAppointmentNotFound is returned for unknown appointment ids.
	ErrAppointmentNotFound = errors.New("reservations: appointment not found")
)

// Appointment is the booking created when a slot is claimed. Its interval
// always equals the claimed slot's interval.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	MedicID   uuid.UUID `json:"medic_id"`
	SlotID    uuid.UUID `json:"slot_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Engine claims slots and manages the appointments created from them.
type Engine interface {
	// Reserve atomically marks the slot reserved and creates its pending
	// appointment. For any slot, at most one call ever succeeds.
	Reserve(ctx context.Context, slotID, patientID uuid.UUID) (*Appointment, error)
	// GetAppointment loads an appointment by id.
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// SetAppointmentStatus moves an appointment to a new lifecycle state.
	SetAppointmentStatus(ctx context.Context, id uuid.UUID, status Status) error
}
