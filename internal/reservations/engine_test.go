package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andesalud/citas-platform/internal/slots"
)

func newTestEngine(t *testing.T) (*MemoryEngine, *slots.Slot) {
	t.Helper()
	store := slots.NewInMemoryStore()
	slot := &slots.Slot{
		ID:       uuid.New(),
		MedicID:  uuid.New(),
		StartsAt: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.Create(context.Background(), slot))
	return NewMemoryEngine(store, nil), slot
}

func TestReserveOpenSlot(t *testing.T) {
	engine, slot := newTestEngine(t)
	patient := uuid.New()

	appt, err := engine.Reserve(context.Background(), slot.ID, patient)
	require.NoError(t, err)
	require.Equal(t, StatusPending, appt.Status)
	require.Equal(t, patient, appt.PatientID)
	require.Equal(t, slot.ID, appt.SlotID)
	require.Equal(t, slot.MedicID, appt.MedicID)
	require.Equal(t, slot.StartsAt, appt.StartsAt)
	require.Equal(t, slot.EndsAt, appt.EndsAt)

	got, err := engine.GetAppointment(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Equal(t, appt.ID, got.ID)
}

func TestReserveTakenSlot(t *testing.T) {
	engine, slot := newTestEngine(t)

	_, err := engine.Reserve(context.Background(), slot.ID, uuid.New())
	require.NoError(t, err)

	_, err = engine.Reserve(context.Background(), slot.ID, uuid.New())
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestReserveUnknownSlot(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Reserve(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestReserveRequiresPatient(t *testing.T) {
	engine, slot := newTestEngine(t)

	_, err := engine.Reserve(context.Background(), slot.ID, uuid.Nil)
	require.Error(t, err)

	// The slot must still be reservable after the rejected request.
	_, err = engine.Reserve(context.Background(), slot.ID, uuid.New())
	require.NoError(t, err)
}

// TestReserveConcurrent hammers one slot from many goroutines and checks
// that exactly one reservation wins.
func TestReserveConcurrent(t *testing.T) {
	engine, slot := newTestEngine(t)

	const attempts = 64
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []*Appointment
		losses  int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			appt, err := engine.Reserve(context.Background(), slot.ID, uuid.New())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, appt)
			case errors.Is(err, ErrSlotUnavailable):
				losses++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	require.Equal(t, attempts-1, losses)
}

func TestSetAppointmentStatus(t *testing.T) {
	engine, slot := newTestEngine(t)

	appt, err := engine.Reserve(context.Background(), slot.ID, uuid.New())
	require.NoError(t, err)

	require.NoError(t, engine.SetAppointmentStatus(context.Background(), appt.ID, StatusConfirmed))

	got, err := engine.GetAppointment(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got.Status)

	err = engine.SetAppointmentStatus(context.Background(), uuid.New(), StatusCancelled)
	require.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetAppointmentUnknown(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.GetAppointment(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrAppointmentNotFound)
}
