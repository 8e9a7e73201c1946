// Package payments drives the Webpay transaction lifecycle for
// appointments: a pending intent is created locally, handed to the
// gateway for authorization, and settled as approved or rejected when
// the patient returns from the payment form.
package payments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the settlement state of a payment intent.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

var (
	// ErrPaymentNotFound is returned for unknown payment ids.
	ErrPaymentNotFound = errors.New("payments: payment not found")
	// ErrUnknownToken is returned when no payment carries the gateway token.
	ErrUnknownToken = errors.New("payments: unknown token")
	// ErrPaymentInFlight is returned when an appointment already has a
	// pending payment awaiting settlement.
	ErrPaymentInFlight = errors.New("payments: payment already in flight")
	// ErrGateway wraps transport or provider failures talking to Webpay.
	ErrGateway = errors.New("payments: gateway failure")
)

// Payment is one charge attempt for an appointment. Token is empty until
// the gateway has accepted the transaction.
type Payment struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	Amount        int
	Token         string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
