package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andesalud/citas-platform/internal/availability"
	"github.com/andesalud/citas-platform/internal/catalog"
	"github.com/andesalud/citas-platform/internal/payments"
	"github.com/andesalud/citas-platform/internal/reservations"
	"github.com/andesalud/citas-platform/internal/slots"
)

// stubGateway plays back configured outcomes.
type stubGateway struct {
	createErr    error
	commitErr    error
	responseCode int
	commitCalls  int
}

func (g *stubGateway) Create(ctx context.Context, req payments.ChargeRequest) (*payments.ChargeResponse, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &payments.ChargeResponse{
		Token: "tok_" + uuid.NewString(),
		URL:   "https://webpay.example/form",
	}, nil
}

func (g *stubGateway) Commit(ctx context.Context, token string) (*payments.CommitResult, error) {
	g.commitCalls++
	if g.commitErr != nil {
		return nil, g.commitErr
	}
	return &payments.CommitResult{
		ResponseCode: g.responseCode,
		Authorized:   g.responseCode == 0,
	}, nil
}

type fixture struct {
	facade *Facade
	engine *reservations.MemoryEngine
	store  *slots.InMemoryStore
	slot   *slots.Slot
	medic  catalog.Medic
}

func newFixture(t *testing.T, gw *stubGateway) *fixture {
	t.Helper()
	regions, communes, areas, medics := catalog.DemoData()
	catalogRepo := catalog.NewInMemoryRepository(regions, communes, areas, medics)

	store := slots.NewInMemoryStore()
	medic := medics[0]
	slot := &slots.Slot{
		ID:       uuid.New(),
		MedicID:  medic.ID,
		StartsAt: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.Create(context.Background(), slot))

	finder := availability.NewFinder(catalogRepo, store, nil)
	engine := reservations.NewMemoryEngine(store, nil)
	coordinator := payments.NewCoordinator(
		payments.NewInMemoryRepository(), gw, "https://citas.example/payments/return", nil)

	return &fixture{
		facade: NewFacade(finder, engine, coordinator, nil, nil),
		engine: engine,
		store:  store,
		slot:   slot,
		medic:  medic,
	}
}

func (f *fixture) availabilityRequest() availability.Request {
	return availability.Request{
		RegionID:  f.medic.RegionID,
		CommuneID: f.medic.CommuneID,
		AreaID:    f.medic.AreaID,
		Specialty: f.medic.Specialty,
	}
}

// Full happy path: search, reserve, pay, confirm.
func TestBookingFlow(t *testing.T) {
	fx := newFixture(t, &stubGateway{responseCode: 0})
	ctx := context.Background()

	open, err := fx.facade.FindAvailability(ctx, fx.availabilityRequest())
	require.NoError(t, err)
	require.Len(t, open, 1)

	appt, err := fx.facade.Reserve(ctx, open[0].ID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, reservations.StatusPending, appt.Status)

	checkout, err := fx.facade.InitiatePayment(ctx, appt.ID, 15000)
	require.NoError(t, err)
	require.NotEmpty(t, checkout.Payment.Token)

	payment, err := fx.facade.ConfirmPayment(ctx, checkout.Payment.Token)
	require.NoError(t, err)
	require.Equal(t, payments.StatusApproved, payment.Status)

	got, err := fx.engine.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	require.Equal(t, reservations.StatusConfirmed, got.Status)

	// The reserved slot no longer shows up in searches.
	open, err = fx.facade.FindAvailability(ctx, fx.availabilityRequest())
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestReserveConflict(t *testing.T) {
	fx := newFixture(t, &stubGateway{})
	ctx := context.Background()

	_, err := fx.facade.Reserve(ctx, fx.slot.ID, uuid.New())
	require.NoError(t, err)

	_, err = fx.facade.Reserve(ctx, fx.slot.ID, uuid.New())
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestReserveValidation(t *testing.T) {
	fx := newFixture(t, &stubGateway{})

	_, err := fx.facade.Reserve(context.Background(), uuid.Nil, uuid.New())
	require.ErrorIs(t, err, ErrValidation)
	_, err = fx.facade.Reserve(context.Background(), fx.slot.ID, uuid.Nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestFindAvailabilityInvalidFilter(t *testing.T) {
	fx := newFixture(t, &stubGateway{})

	_, err := fx.facade.FindAvailability(context.Background(), availability.Request{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestInitiatePaymentUnknownAppointment(t *testing.T) {
	fx := newFixture(t, &stubGateway{})

	_, err := fx.facade.InitiatePayment(context.Background(), uuid.New(), 15000)
	require.ErrorIs(t, err, ErrValidation)
}

// A rejected settlement leaves the appointment pending so the patient
// can pay again.
func TestConfirmRejectedLeavesAppointmentPending(t *testing.T) {
	fx := newFixture(t, &stubGateway{responseCode: -1})
	ctx := context.Background()

	appt, err := fx.facade.Reserve(ctx, fx.slot.ID, uuid.New())
	require.NoError(t, err)
	checkout, err := fx.facade.InitiatePayment(ctx, appt.ID, 15000)
	require.NoError(t, err)

	payment, err := fx.facade.ConfirmPayment(ctx, checkout.Payment.Token)
	require.NoError(t, err)
	require.Equal(t, payments.StatusRejected, payment.Status)

	got, err := fx.engine.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	require.Equal(t, reservations.StatusPending, got.Status)
}

func TestConfirmUnknownToken(t *testing.T) {
	fx := newFixture(t, &stubGateway{})

	_, err := fx.facade.ConfirmPayment(context.Background(), "tok_nobody")
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestInitiateGatewayDown(t *testing.T) {
	gw := &stubGateway{createErr: fmt.Errorf("%w: create returned 503", payments.ErrGateway)}
	fx := newFixture(t, gw)
	ctx := context.Background()

	appt, err := fx.facade.Reserve(ctx, fx.slot.ID, uuid.New())
	require.NoError(t, err)

	_, err = fx.facade.InitiatePayment(ctx, appt.ID, 15000)
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestConfirmGatewayDown(t *testing.T) {
	gw := &stubGateway{commitErr: fmt.Errorf("%w: commit returned 500", payments.ErrGateway)}
	fx := newFixture(t, gw)
	ctx := context.Background()

	appt, err := fx.facade.Reserve(ctx, fx.slot.ID, uuid.New())
	require.NoError(t, err)
	checkout, err := fx.facade.InitiatePayment(ctx, appt.ID, 15000)
	require.NoError(t, err)

	_, err = fx.facade.ConfirmPayment(ctx, checkout.Payment.Token)
	require.ErrorIs(t, err, ErrGatewayUnavailable)

	// The appointment stays pending; the money never moved.
	got, err := fx.engine.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	require.Equal(t, reservations.StatusPending, got.Status)
}
