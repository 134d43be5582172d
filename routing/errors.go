package routing

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPathFound is returned when every candidate for a second
	// trampoline has been ruled out by earlier failed attempts. The caller
	// should give up on trampoline routing for this attempt.
	ErrNoPathFound = errors.New("no path found")

	// ErrFeeBudgetExceeded is returned when the fee levels are exhausted
	// or the route doesn't fit in the payment's fee and cltv budget.
	ErrFeeBudgetExceeded = errors.New("fee budget exceeded")

	// ErrMissingAmount is returned when an invoice without amount is paid
	// without specifying one.
	ErrMissingAmount = errors.New("amount required")

	// ErrMissingPaymentAddr is returned when an invoice doesn't carry a
	// payment secret, which trampoline payments require.
	ErrMissingPaymentAddr = errors.New("payment address required")

	// ErrFinalCLTVTooLarge is returned when an invoice asks for a final
	// cltv delta beyond the maximum time lock of a payment.
	ErrFinalCLTVTooLarge = errors.New("final cltv delta too large")

	// ErrOnionTooLarge is returned when the payloads of a trampoline onion
	// exceed its capacity.
	ErrOnionTooLarge = errors.New("trampoline onion payloads too large")
)

// ErrInvalidRoute is returned when a route doesn't have the shape of a
// trampoline route from sender to receiver.
type ErrInvalidRoute struct {
	// Index is the index of the offending edge, or -1 if the route as a
	// whole is at fault.
	Index int

	// Reason describes the violation.
	Reason string
}

// Error returns a message naming the edge that breaks the route.
func (e *ErrInvalidRoute) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid route: %v", e.Reason)
	}

	return fmt.Sprintf("invalid route: edge %d: %v", e.Index, e.Reason)
}
