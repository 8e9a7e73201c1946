package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andesalud/citas-platform/internal/availability"
	"github.com/andesalud/citas-platform/internal/observability/metrics"
	"github.com/andesalud/citas-platform/internal/payments"
	"github.com/andesalud/citas-platform/internal/reservations"
	"github.com/andesalud/citas-platform/pkg/logging"
)

var facadeTracer = otel.Tracer("citas.internal.booking")

// Facade is the one entry point the transport layer talks to.
type Facade struct {
	finder   *availability.Finder
	engine   reservations.Engine
	payments *payments.Coordinator
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics
}

func NewFacade(
	finder *availability.Finder,
	engine reservations.Engine,
	coordinator *payments.Coordinator,
	logger *logging.Logger,
	m *metrics.BookingMetrics,
) *Facade {
	if logger == nil {
		logger = logging.Default()
	}
	return &Facade{
		finder:   finder,
		engine:   engine,
		payments: coordinator,
		logger:   logger,
		metrics:  m,
	}
}

// FindAvailability returns the open, deduplicated slots matching the
// request. An empty result is not an error.
func (f *Facade) FindAvailability(ctx context.Context, req availability.Request) ([]availability.OpenSlot, error) {
	start := time.Now()
	open, err := f.finder.Find(ctx, req)
	f.metrics.ObserveAvailabilityLatency(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, availability.ErrInvalidFilter) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return open, nil
}

// Reserve claims the slot for the patient and returns the pending
// appointment. Losing a race for the slot surfaces as ErrSlotUnavailable.
func (f *Facade) Reserve(ctx context.Context, slotID, patientID uuid.UUID) (*reservations.Appointment, error) {
	ctx, span := facadeTracer.Start(ctx, "booking.reserve")
	defer span.End()
	span.SetAttributes(attribute.String("citas.slot_id", slotID.String()))

	if slotID == uuid.Nil || patientID == uuid.Nil {
		return nil, fmt.Errorf("%w: slot id and patient id are required", ErrValidation)
	}

	appt, err := f.engine.Reserve(ctx, slotID, patientID)
	if err != nil {
		if errors.Is(err, reservations.ErrSlotUnavailable) {
			f.metrics.ObserveReservation("conflict")
			return nil, ErrSlotUnavailable
		}
		f.metrics.ObserveReservation("error")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	f.metrics.ObserveReservation("reserved")
	return appt, nil
}

// InitiatePayment opens a gateway transaction for the appointment. The
// appointment must exist; a gateway outage leaves the local payment
// pending and surfaces as ErrGatewayUnavailable.
func (f *Facade) InitiatePayment(ctx context.Context, appointmentID uuid.UUID, amount int) (*payments.Checkout, error) {
	ctx, span := facadeTracer.Start(ctx, "booking.initiate_payment")
	defer span.End()
	span.SetAttributes(attribute.String("citas.appointment_id", appointmentID.String()))

	if _, err := f.engine.GetAppointment(ctx, appointmentID); err != nil {
		if errors.Is(err, reservations.ErrAppointmentNotFound) {
			return nil, fmt.Errorf("%w: unknown appointment", ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	checkout, err := f.payments.Initiate(ctx, appointmentID, amount)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrGateway):
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		case errors.Is(err, payments.ErrPaymentInFlight):
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	return checkout, nil
}

// ConfirmPayment settles the token and, on approval, confirms the
// appointment. A rejected settlement leaves the appointment pending so
// the patient can retry with a fresh payment.
func (f *Facade) ConfirmPayment(ctx context.Context, token string) (*payments.Payment, error) {
	ctx, span := facadeTracer.Start(ctx, "booking.confirm_payment")
	defer span.End()

	payment, err := f.payments.Confirm(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrUnknownToken):
			return nil, ErrUnknownToken
		case errors.Is(err, payments.ErrGateway):
			f.metrics.ObservePayment("gateway_error")
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	f.metrics.ObservePayment(string(payment.Status))
	if payment.Status == payments.StatusApproved {
		if err := f.engine.SetAppointmentStatus(ctx, payment.AppointmentID, reservations.StatusConfirmed); err != nil {
			// The money moved. Log loudly and surface a storage error so
			// the operator reconciles instead of the patient retrying.
			f.logger.Error("payment approved but appointment not confirmed",
				"appointment_id", payment.AppointmentID,
				"payment_id", payment.ID,
				"error", err,
			)
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		f.logger.Info("appointment confirmed",
			"appointment_id", payment.AppointmentID,
			"payment_id", payment.ID,
		)
	}
	return payment, nil
}
