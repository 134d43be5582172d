package routing

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/trampoline/hophints"
)

const (
	// TrampolineRoutingRequiredEclair is the required trampoline feature
	// bit used by Eclair.
	TrampolineRoutingRequiredEclair lnwire.FeatureBit = 50

	// TrampolineRoutingOptionalEclair is the optional trampoline feature
	// bit used by Eclair.
	TrampolineRoutingOptionalEclair lnwire.FeatureBit = 51

	// TrampolineRoutingRequiredElectrum is the required trampoline
	// feature bit used by Electrum.
	TrampolineRoutingRequiredElectrum lnwire.FeatureBit = 56

	// TrampolineRoutingOptionalElectrum is the optional trampoline
	// feature bit used by Electrum.
	TrampolineRoutingOptionalElectrum lnwire.FeatureBit = 57
)

// TrampolineFeatureNames names the trampoline feature bits for use with
// lnwire.NewFeatureVector.
var TrampolineFeatureNames = map[lnwire.FeatureBit]string{
	TrampolineRoutingRequiredEclair:   "trampoline-routing-eclair",
	TrampolineRoutingOptionalEclair:   "trampoline-routing-eclair",
	TrampolineRoutingRequiredElectrum: "trampoline-routing-electrum",
	TrampolineRoutingOptionalElectrum: "trampoline-routing-electrum",
}

// SupportsTrampoline returns true if either bit of the Eclair or Electrum
// trampoline feature pair is set.
func SupportsTrampoline(features *lnwire.FeatureVector) bool {
	if features == nil {
		return false
	}

	for bit := range TrampolineFeatureNames {
		if features.IsSet(bit) {
			return true
		}
	}

	return false
}

// ClassifyPayment decides whether a payment must be relayed to a receiver
// that can't decode trampoline onions. For end-to-end payments it also
// returns the trampolines named by single step route hints, which are the
// receiver's own trampolines.
func ClassifyPayment(features *lnwire.FeatureVector,
	hints []hophints.RouteHint) (bool, fn.Set[route.Vertex]) {

	candidates := fn.NewSet[route.Vertex]()

	if !SupportsTrampoline(features) {
		return true, candidates
	}

	if len(hints) == 0 {
		return false, candidates
	}

	for _, hint := range hints {
		if len(hint) == 1 {
			candidates.Add(hint[0].NodeID)
		}
	}

	// The receiver supports trampoline but is only reachable through
	// private channels of nodes that aren't trampolines.
	if len(candidates) == 0 {
		return true, candidates
	}

	return false, candidates
}

// truncateFeatures returns the lowest 64 bits of the feature vector.
func truncateFeatures(features *lnwire.FeatureVector) uint64 {
	if features == nil {
		return 0
	}

	var bits uint64
	for bit := lnwire.FeatureBit(0); bit < 64; bit++ {
		if features.IsSet(bit) {
			bits |= 1 << bit
		}
	}

	return bits
}
