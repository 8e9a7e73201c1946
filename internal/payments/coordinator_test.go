package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// scriptedGateway records calls and plays back configured outcomes.
type scriptedGateway struct {
	createErr    error
	commitErr    error
	responseCode int

	createCalls int
	commitCalls int
	lastCharge  ChargeRequest
}

func (g *scriptedGateway) Create(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	g.createCalls++
	g.lastCharge = req
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &ChargeResponse{
		Token: "tok_" + uuid.NewString(),
		URL:   "https://webpay.example/form",
	}, nil
}

func (g *scriptedGateway) Commit(ctx context.Context, token string) (*CommitResult, error) {
	g.commitCalls++
	if g.commitErr != nil {
		return nil, g.commitErr
	}
	return &CommitResult{
		ResponseCode: g.responseCode,
		Authorized:   g.responseCode == 0,
	}, nil
}

func newTestCoordinator(gw *scriptedGateway) (*Coordinator, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewCoordinator(repo, gw, "https://citas.example/payments/return", nil), repo
}

func TestInitiateOpensTransaction(t *testing.T) {
	gw := &scriptedGateway{}
	coord, _ := newTestCoordinator(gw)
	apptID := uuid.New()

	checkout, err := coord.Initiate(context.Background(), apptID, 15000)
	require.NoError(t, err)
	require.Equal(t, StatusPending, checkout.Payment.Status)
	require.NotEmpty(t, checkout.Payment.Token)
	require.Equal(t, "https://webpay.example/form", checkout.URL)

	require.Equal(t, 1, gw.createCalls)
	require.Equal(t, 15000, gw.lastCharge.Amount)
	require.Equal(t, "https://citas.example/payments/return", gw.lastCharge.ReturnURL)
	require.LessOrEqual(t, len(gw.lastCharge.BuyOrder), 26)
	require.Contains(t, gw.lastCharge.BuyOrder, "appt_")
}

func TestInitiateRejectsBadAmount(t *testing.T) {
	gw := &scriptedGateway{}
	coord, _ := newTestCoordinator(gw)

	_, err := coord.Initiate(context.Background(), uuid.New(), 0)
	require.Error(t, err)
	_, err = coord.Initiate(context.Background(), uuid.New(), -500)
	require.Error(t, err)
	require.Zero(t, gw.createCalls)
}

func TestInitiateSinglePendingPerAppointment(t *testing.T) {
	gw := &scriptedGateway{}
	coord, _ := newTestCoordinator(gw)
	apptID := uuid.New()

	_, err := coord.Initiate(context.Background(), apptID, 15000)
	require.NoError(t, err)

	_, err = coord.Initiate(context.Background(), apptID, 15000)
	require.ErrorIs(t, err, ErrPaymentInFlight)
	require.Equal(t, 1, gw.createCalls)
}

func TestInitiateGatewayDownLeavesPending(t *testing.T) {
	gw := &scriptedGateway{createErr: fmt.Errorf("%w: create returned 503", ErrGateway)}
	coord, repo := newTestCoordinator(gw)
	apptID := uuid.New()

	_, err := coord.Initiate(context.Background(), apptID, 15000)
	require.ErrorIs(t, err, ErrGateway)

	// The local record survives the outage for reconciliation.
	open, err := repo.HasPending(context.Background(), apptID)
	require.NoError(t, err)
	require.True(t, open)
}

func TestConfirmApproved(t *testing.T) {
	gw := &scriptedGateway{responseCode: 0}
	coord, _ := newTestCoordinator(gw)

	checkout, err := coord.Initiate(context.Background(), uuid.New(), 15000)
	require.NoError(t, err)

	payment, err := coord.Confirm(context.Background(), checkout.Payment.Token)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, payment.Status)
	require.Equal(t, 1, gw.commitCalls)
}

func TestConfirmRejected(t *testing.T) {
	gw := &scriptedGateway{responseCode: -1}
	coord, _ := newTestCoordinator(gw)

	checkout, err := coord.Initiate(context.Background(), uuid.New(), 15000)
	require.NoError(t, err)

	payment, err := coord.Confirm(context.Background(), checkout.Payment.Token)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, payment.Status)
}

func TestConfirmUnknownToken(t *testing.T) {
	gw := &scriptedGateway{}
	coord, _ := newTestCoordinator(gw)

	_, err := coord.Confirm(context.Background(), "tok_nobody")
	require.ErrorIs(t, err, ErrUnknownToken)
	require.Zero(t, gw.commitCalls)
}

// A settled token replays the recorded outcome; the gateway must not
// see a second commit.
func TestConfirmIdempotent(t *testing.T) {
	gw := &scriptedGateway{responseCode: 0}
	coord, _ := newTestCoordinator(gw)

	checkout, err := coord.Initiate(context.Background(), uuid.New(), 15000)
	require.NoError(t, err)

	first, err := coord.Confirm(context.Background(), checkout.Payment.Token)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, first.Status)

	second, err := coord.Confirm(context.Background(), checkout.Payment.Token)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, second.Status)
	require.Equal(t, 1, gw.commitCalls)
}

func TestConfirmGatewayErrorClosesPayment(t *testing.T) {
	gw := &scriptedGateway{commitErr: fmt.Errorf("%w: commit returned 500", ErrGateway)}
	coord, repo := newTestCoordinator(gw)

	checkout, err := coord.Initiate(context.Background(), uuid.New(), 15000)
	require.NoError(t, err)

	_, err = coord.Confirm(context.Background(), checkout.Payment.Token)
	require.ErrorIs(t, err, ErrGateway)

	stored, err := repo.GetByToken(context.Background(), checkout.Payment.Token)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, stored.Status)
}

func TestBuyOrderFitsWebpayLimit(t *testing.T) {
	for i := 0; i < 20; i++ {
		order := buyOrder(uuid.New())
		if len(order) > 26 {
			t.Fatalf("buy order %q exceeds 26 characters", order)
		}
	}
}
