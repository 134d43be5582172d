package routing

import (
	"fmt"

	"github.com/lightningnetwork/lnd/lnwire"
)

// MaxFeeLevel is the highest fee level. Each level below it halves the share
// of the budget offered to trampolines.
const MaxFeeLevel = 6

// UsableFee returns the part of the budget offered to trampolines at the
// given fee level.
func UsableFee(budget FeeBudget, level uint32) (lnwire.MilliSatoshi, error) {
	switch {
	case level > MaxFeeLevel:
		return 0, fmt.Errorf("%w: fee level %d above maximum %d",
			ErrFeeBudgetExceeded, level, MaxFeeLevel)

	case level == 0:
		return 0, nil
	}

	return budget.FeeMsat >> (MaxFeeLevel - level), nil
}

// AllocateFees resolves the fee of every edge that doesn't have one yet. The
// usable fee for the level is split evenly between them as a base fee.
func AllocateFees(r *Route, budget FeeBudget, level uint32) error {
	usable, err := UsableFee(budget, level)
	if err != nil {
		return err
	}

	var unset []*Edge
	for _, edge := range r.Edges {
		if edge.Fee.IsNone() {
			unset = append(unset, edge)
		}
	}
	if len(unset) == 0 {
		return nil
	}

	share := usable / lnwire.MilliSatoshi(len(unset))
	for _, edge := range unset {
		edge.resolveFee(FeePolicy{BaseMsat: share})
	}

	log.Debugf("Allocated %v of %v to each of %d trampolines at fee "+
		"level %d", share, budget.FeeMsat, len(unset), level)

	return nil
}
