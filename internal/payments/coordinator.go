package payments

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andesalud/citas-platform/pkg/logging"
)

var coordinatorTracer = otel.Tracer("citas.internal.payments")

// Coordinator owns the payment lifecycle around the gateway. The local
// row is always written before the gateway is called, so a crash or a
// gateway outage leaves a pending record that reconciliation can pick
// up instead of a charge with no trace.
type Coordinator struct {
	repo      Repository
	gateway   Gateway
	returnURL string
	logger    *logging.Logger
}

// Checkout is what the caller needs to send the patient to the payment
// form.
type Checkout struct {
	Payment *Payment
	URL     string
}

func NewCoordinator(repo Repository, gateway Gateway, returnURL string, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{
		repo:      repo,
		gateway:   gateway,
		returnURL: returnURL,
		logger:    logger,
	}
}

// Initiate opens a Webpay transaction for the appointment. Only one
// pending payment may exist per appointment at a time.
func (c *Coordinator) Initiate(ctx context.Context, appointmentID uuid.UUID, amount int) (*Checkout, error) {
	ctx, span := coordinatorTracer.Start(ctx, "payments.initiate")
	defer span.End()
	span.SetAttributes(
		attribute.String("citas.appointment_id", appointmentID.String()),
		attribute.Int("citas.amount", amount),
	)

	if appointmentID == uuid.Nil {
		return nil, errors.New("payments: appointment id required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive, got %d", amount)
	}

	open, err := c.repo.HasPending(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrPaymentInFlight
	}

	payment := &Payment{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Amount:        amount,
		Status:        StatusPending,
	}
	if err := c.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	resp, err := c.gateway.Create(ctx, ChargeRequest{
		BuyOrder:  buyOrder(payment.ID),
		SessionID: "session_" + payment.ID.String(),
		Amount:    amount,
		ReturnURL: c.returnURL,
	})
	if err != nil {
		// The pending row stays. Retrying goes through reconciliation,
		// not a second Initiate.
		c.logger.Error("webpay create failed, payment left pending",
			"payment_id", payment.ID,
			"appointment_id", appointmentID,
			"error", err,
		)
		if errors.Is(err, ErrGateway) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := c.repo.SetToken(ctx, payment.ID, resp.Token); err != nil {
		return nil, err
	}
	payment.Token = resp.Token

	c.logger.Info("payment initiated",
		"payment_id", payment.ID,
		"appointment_id", appointmentID,
		"amount", amount,
	)
	return &Checkout{Payment: payment, URL: resp.URL}, nil
}

// Confirm settles the transaction behind the token. Replaying a token
// that already settled returns the recorded outcome without calling the
// gateway again.
func (c *Coordinator) Confirm(ctx context.Context, token string) (*Payment, error) {
	ctx, span := coordinatorTracer.Start(ctx, "payments.confirm")
	defer span.End()

	if token == "" {
		return nil, ErrUnknownToken
	}

	payment, err := c.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return payment, nil
	}

	result, err := c.gateway.Commit(ctx, token)
	if err != nil {
		// An unsettled commit cannot be told apart from a rejection, so
		// the payment is closed out rather than left pending forever.
		if setErr := c.repo.SetStatus(ctx, payment.ID, StatusRejected); setErr != nil {
			c.logger.Error("failed to reject payment after gateway error",
				"payment_id", payment.ID,
				"error", setErr,
			)
		}
		payment.Status = StatusRejected
		if errors.Is(err, ErrGateway) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	status := StatusRejected
	if result.Authorized {
		status = StatusApproved
	}
	if err := c.repo.SetStatus(ctx, payment.ID, status); err != nil {
		return nil, err
	}
	payment.Status = status

	c.logger.Info("payment settled",
		"payment_id", payment.ID,
		"appointment_id", payment.AppointmentID,
		"status", status,
		"response_code", result.ResponseCode,
	)
	return payment, nil
}

// buyOrder derives Webpay's buy_order from the payment id. Webpay caps
// the field at 26 characters, shorter than a formatted UUID, so only
// the first ten bytes go on the wire.
func buyOrder(id uuid.UUID) string {
	return "appt_" + hex.EncodeToString(id[:10])
}
