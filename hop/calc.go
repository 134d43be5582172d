package hop

import (
	"errors"
	"fmt"

	sphinx "github.com/lightningnetwork/lightning-onion"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	lnrecord "github.com/lightningnetwork/lnd/record"
)

const feeRateParts = 1_000_000

var (
	// ErrNoHops is returned when payloads are requested for an empty
	// path.
	ErrNoHops = errors.New("payment path has no hops")

	// ErrTooManyHops is returned when a path is longer than an onion can
	// address.
	ErrTooManyHops = errors.New("payment path has too many hops")
)

// Policy is the forwarding policy of the edge that leads into a hop. The
// start node of the edge charges the fee and requires the cltv delta.
type Policy struct {
	// ChannelID is the channel of the edge. It is zero for trampoline
	// edges.
	ChannelID lnwire.ShortChannelID

	// BaseFee is the flat fee charged for forwarding over the edge.
	BaseFee lnwire.MilliSatoshi

	// FeeRate is the proportional fee in millionths.
	FeeRate uint32

	// CLTVDelta is the time lock delta required by the edge.
	CLTVDelta uint16
}

// Fee returns the fee charged for forwarding amt over the edge.
func (p Policy) Fee(amt lnwire.MilliSatoshi) lnwire.MilliSatoshi {
	return p.BaseFee + amt*lnwire.MilliSatoshi(p.FeeRate)/feeRateParts
}

// CalcPayloads walks the path from the receiver back to the sender and
// derives the payload of every hop. The policy at index i belongs to the
// edge leading into hop i, the policy of the first edge is never charged
// since it is the sender's own channel. The final hop receives exactly amt
// with an expiry of finalCLTV. It returns the payloads in path order along
// with the amount and absolute expiry of the HTLC for the first hop.
func CalcPayloads(policies []Policy, amt lnwire.MilliSatoshi,
	finalCLTV uint32, totalAmt lnwire.MilliSatoshi,
	paymentAddr [32]byte) ([]*Payload, lnwire.MilliSatoshi, uint32,
	error) {

	numHops := len(policies)
	switch {
	case numHops == 0:
		return nil, 0, 0, ErrNoHops

	case numHops > sphinx.NumMaxHops:
		return nil, 0, 0, fmt.Errorf("%w: %d", ErrTooManyHops, numHops)
	}

	var (
		payloads = make([]*Payload, numHops)
		cltv     = finalCLTV
	)

	payloads[numHops-1] = &Payload{
		AmountToForward: amt,
		OutgoingCLTV:    cltv,
		MPP:             lnrecord.NewMPP(totalAmt, paymentAddr),
	}

	for i := numHops - 1; i > 0; i-- {
		policy := policies[i]

		payloads[i-1] = &Payload{
			AmountToForward: amt,
			OutgoingCLTV:    cltv,
			NextChannel:     fn.Some(policy.ChannelID),
		}

		amt += policy.Fee(amt)
		cltv += uint32(policy.CLTVDelta)
	}

	return payloads, amt, cltv, nil
}
