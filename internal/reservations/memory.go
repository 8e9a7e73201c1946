package reservations

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andesalud/citas-platform/internal/slots"
	"github.com/andesalud/citas-platform/pkg/logging"
)

var reservationTracer = otel.Tracer("citas.internal.reservations")

// MemoryEngine reserves against the in-memory slot store. The store's Claim
// is the compare-and-set: at most one caller wins it, so losers fail
// immediately instead of blocking.
type MemoryEngine struct {
	store  *slots.InMemoryStore
	logger *logging.Logger

	mu           sync.RWMutex
	appointments map[uuid.UUID]*Appointment
}

// NewMemoryEngine creates an engine over the in-memory inventory.
func NewMemoryEngine(store *slots.InMemoryStore, logger *logging.Logger) *MemoryEngine {
	if store == nil {
		panic("reservations: slot store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryEngine{
		store:        store,
		logger:       logger,
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func (e *MemoryEngine) Reserve(ctx context.Context, slotID, patientID uuid.UUID) (*Appointment, error) {
	ctx, span := reservationTracer.Start(ctx, "reservations.reserve")
	defer span.End()
	span.SetAttributes(attribute.String("citas.slot_id", slotID.String()))

	if patientID == uuid.Nil {
		return nil, errors.New("reservations: patient id required")
	}

	claimed, err := e.store.Claim(ctx, slotID)
	if err != nil {
		if errors.Is(err, slots.ErrSlotNotFound) || errors.Is(err, slots.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		span.RecordError(err)
		return nil, err
	}

	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		MedicID:   claimed.MedicID,
		SlotID:    claimed.ID,
		StartsAt:  claimed.StartsAt,
		EndsAt:    claimed.EndsAt,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	e.mu.Lock()
	e.appointments[appt.ID] = appt
	e.mu.Unlock()

	e.logger.Info("slot reserved",
		"slot_id", claimed.ID,
		"appointment_id", appt.ID,
		"medic_id", claimed.MedicID,
	)
	copied := *appt
	return &copied, nil
}

func (e *MemoryEngine) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	appt, ok := e.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

func (e *MemoryEngine) SetAppointmentStatus(ctx context.Context, id uuid.UUID, status Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	appt, ok := e.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.Status = status
	return nil
}
