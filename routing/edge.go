package routing

import (
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/trampoline/hop"
)

// TrampolineCLTVDelta is the cltv delta we assume for every trampoline
// edge. Trampolines don't announce their policy, and they don't send it back
// in failures when we offer too little.
const TrampolineCLTVDelta = 576

// FeePolicy is the fee charged for forwarding over an edge.
type FeePolicy struct {
	// BaseMsat is the flat fee.
	BaseMsat lnwire.MilliSatoshi

	// ProportionalMillionths is the fee rate in millionths.
	ProportionalMillionths uint32
}

// LegacyRelay is attached to the edge leading to the trampoline that will
// relay the payment to a receiver without trampoline support.
type LegacyRelay struct {
	// RoutingInfo holds one encoded blob per route hint of the invoice.
	RoutingInfo [][]byte

	// InvoiceFeatures are the lowest 64 feature bits of the invoice.
	InvoiceFeatures uint64

	// OutgoingNodeID is the receiver the relay should pay.
	OutgoingNodeID route.Vertex
}

// Edge is a single trampoline hop of a route.
type Edge struct {
	// StartNode is the node forwarding over the edge.
	StartNode route.Vertex

	// EndNode is the node receiving over the edge.
	EndNode route.Vertex

	// Fee is None until the fee allocator resolves it. It is resolved
	// exactly once.
	Fee fn.Option[FeePolicy]

	// CLTVDelta is the time lock delta required by StartNode.
	CLTVDelta uint16

	// Features are the features we assume EndNode supports.
	Features *lnwire.FeatureVector

	// ChannelID is zero for trampoline edges, the trampoline picks the
	// channel.
	ChannelID lnwire.ShortChannelID

	// LegacyRelay is set on the edge to the trampoline relaying to a
	// legacy receiver.
	LegacyRelay *LegacyRelay
}

func newEdge(start, end route.Vertex, payFees bool) *Edge {
	edge := &Edge{
		StartNode: start,
		EndNode:   end,
		Features: lnwire.NewFeatureVector(
			lnwire.NewRawFeatureVector(
				lnwire.TLVOnionPayloadOptional,
			), lnwire.Features,
		),
	}

	// The first edge is our own channel to our trampoline, which we
	// don't pay fees for.
	if payFees {
		edge.CLTVDelta = TrampolineCLTVDelta
	} else {
		edge.Fee = fn.Some(FeePolicy{})
	}

	return edge
}

// resolveFee sets the fee of an unresolved edge. Resolving an edge twice is
// a bug in the allocator.
func (e *Edge) resolveFee(policy FeePolicy) {
	if e.Fee.IsSome() {
		panic(fmt.Sprintf("fee of edge %v already resolved", e))
	}

	e.Fee = fn.Some(policy)
}

// policy returns the forwarding policy of the edge. An unresolved fee counts
// as zero.
func (e *Edge) policy() hop.Policy {
	fee := e.Fee.UnwrapOr(FeePolicy{})

	return hop.Policy{
		ChannelID: e.ChannelID,
		BaseFee:   fee.BaseMsat,
		FeeRate:   fee.ProportionalMillionths,
		CLTVDelta: e.CLTVDelta,
	}
}

// String returns a human readable representation of the edge.
func (e *Edge) String() string {
	fee := fn.MapOptionZ(e.Fee, func(p FeePolicy) string {
		return fmt.Sprintf("%v+%vppm", p.BaseMsat,
			p.ProportionalMillionths)
	})
	if fee == "" {
		fee = "unset"
	}

	return fmt.Sprintf("%v->%v(fee=%v, cltv=%v, legacy=%v)", e.StartNode,
		e.EndNode, fee, e.CLTVDelta, e.LegacyRelay != nil)
}
