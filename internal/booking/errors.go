// Package booking is the application surface of the reservation
// system. The facade composes the availability finder, the reservation
// engine and the payment coordinator, and translates their failures
// into a stable error taxonomy for the HTTP layer.
package booking

import "errors"

var (
	// ErrSlotUnavailable means the requested slot does not exist or was
	// already reserved by the time the request arrived.
	ErrSlotUnavailable = errors.New("booking: slot unavailable")
	// ErrValidation covers malformed input the caller can fix.
	ErrValidation = errors.New("booking: invalid request")
	// ErrGatewayUnavailable means the payment provider failed or could
	// not be reached.
	ErrGatewayUnavailable = errors.New("booking: payment gateway unavailable")
	// ErrUnknownToken means no payment carries the presented token.
	ErrUnknownToken = errors.New("booking: unknown payment token")
	// ErrStorage covers persistence failures the caller cannot fix.
	ErrStorage = errors.New("booking: storage failure")
)
