package routing

import (
	"fmt"

	"github.com/lightningnetwork/lnd/lnwire"
)

const (
	// MaxCLTVDelta is the largest total time lock delta we accept for a
	// payment, in blocks.
	MaxCLTVDelta = 28 * 144

	// MaxFeeMillionths is the upper bound of the proportional part of a
	// fee budget.
	MaxFeeMillionths = 250_000

	// MaxFeeCutoffMsat is the upper bound of the flat part of a fee
	// budget.
	MaxFeeCutoffMsat lnwire.MilliSatoshi = 10_000_000
)

// FeeBudget bounds what a payment may spend on fees and time lock.
type FeeBudget struct {
	// FeeMsat is the most we pay in fees.
	FeeMsat lnwire.MilliSatoshi

	// CLTVDelta is the largest total time lock delta of the route.
	CLTVDelta uint32
}

// NewFeeBudget returns the budget for paying amt. The fee is the larger of
// feeMillionths of amt and cutoff, so small payments may always spend the
// cutoff.
func NewFeeBudget(amt lnwire.MilliSatoshi, feeMillionths uint64,
	cutoff lnwire.MilliSatoshi) FeeBudget {

	if feeMillionths > MaxFeeMillionths {
		feeMillionths = MaxFeeMillionths
	}
	if cutoff > MaxFeeCutoffMsat {
		cutoff = MaxFeeCutoffMsat
	}

	fee := amt * lnwire.MilliSatoshi(feeMillionths) / 1_000_000
	if fee < cutoff {
		fee = cutoff
	}

	return FeeBudget{
		FeeMsat:   fee,
		CLTVDelta: MaxCLTVDelta,
	}
}

// String returns a human readable representation of the budget.
func (b FeeBudget) String() string {
	return fmt.Sprintf("fee=%v, cltv_delta=%v", b.FeeMsat, b.CLTVDelta)
}

// checkBudget verifies that delivering amt over the route stays within the
// budget. The first edge is ours and costs nothing.
func checkBudget(r *Route, budget FeeBudget, amt lnwire.MilliSatoshi,
	minFinalCLTVDelta uint32) error {

	var (
		total     = amt
		cltvDelta uint32
	)
	for i := len(r.Edges) - 1; i >= 1; i-- {
		policy := r.Edges[i].policy()
		total += policy.Fee(total)
		cltvDelta += uint32(policy.CLTVDelta)
	}

	fees := total - amt
	switch {
	case fees > budget.FeeMsat:
		return fmt.Errorf("%w: fees %v exceed budget %v",
			ErrFeeBudgetExceeded, fees, budget.FeeMsat)

	case cltvDelta > budget.CLTVDelta:
		return fmt.Errorf("%w: cltv delta %v exceeds budget %v",
			ErrFeeBudgetExceeded, cltvDelta, budget.CLTVDelta)

	case uint64(cltvDelta)+uint64(minFinalCLTVDelta) > MaxCLTVDelta:
		return fmt.Errorf("%w: cltv delta %v with final delta %v "+
			"exceeds maximum %v", ErrFeeBudgetExceeded, cltvDelta,
			minFinalCLTVDelta, MaxCLTVDelta)
	}

	return nil
}
