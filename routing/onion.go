package routing

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/davecgh/go-spew/spew"
	sphinx "github.com/lightningnetwork/lightning-onion"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	lnrecord "github.com/lightningnetwork/lnd/record"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/trampoline/hop"
)

const (
	// TrampolineHopsDataSize is the capacity of the hop data of a
	// trampoline onion.
	TrampolineHopsDataSize = 400

	// PerHopHMACSize is the size of the HMAC following every hop's
	// payload.
	PerHopHMACSize = sphinx.HMACSize

	// minRoutingInfoSpace is the space below which no route hint is
	// expected to fit anymore.
	minRoutingInfoSpace = 50

	// routingInfoOverhead is reserved for adding the routing info record
	// to a payload: its type (5 bytes), its length (up to 3 bytes) and
	// the growth of the payload's own length prefix (up to 2 bytes).
	routingInfoOverhead = 5 + 3 + 2
)

// OnionConstructor builds an onion packet from per hop payloads.
type OnionConstructor interface {
	// NewOnionPacket builds an onion addressed to path, where payloads[i]
	// is the tlv payload of path[i]. The assocData is committed to by
	// every hop's HMAC. If trampoline is set, the payloads must fit the
	// capacity of a trampoline onion.
	NewOnionPacket(path []route.Vertex, sessionKey *btcec.PrivateKey,
		payloads [][]byte, assocData []byte,
		trampoline bool) (*sphinx.OnionPacket, error)
}

// SphinxOnion is an OnionConstructor backed by lightning-onion.
type SphinxOnion struct{}

// A compile time check to ensure SphinxOnion meets the OnionConstructor
// interface.
var _ OnionConstructor = (*SphinxOnion)(nil)

// NewOnionPacket builds the onion with lightning-onion, padding it with a
// filler derived from the session key. Trampoline onions carry
// TrampolineHopsDataSize bytes of hop data, all others the regular payment
// onion size.
func (s *SphinxOnion) NewOnionPacket(path []route.Vertex,
	sessionKey *btcec.PrivateKey, payloads [][]byte, assocData []byte,
	trampoline bool) (*sphinx.OnionPacket, error) {

	switch {
	case len(path) != len(payloads):
		return nil, fmt.Errorf("%d payloads for %d hops",
			len(payloads), len(path))

	case len(path) > sphinx.NumMaxHops:
		return nil, fmt.Errorf("%d hops exceeds maximum of %d",
			len(path), sphinx.NumMaxHops)
	}

	payloadSize := sphinx.MaxRoutingPayloadSize
	if trampoline {
		var size int
		for _, payload := range payloads {
			size += hop.SerializedSize(payload)
		}
		if size > TrampolineHopsDataSize {
			return nil, fmt.Errorf("%w: %d bytes exceeds %d",
				ErrOnionTooLarge, size, TrampolineHopsDataSize)
		}

		payloadSize = TrampolineHopsDataSize
	}

	var sphinxPath sphinx.PaymentPath
	for i, node := range path {
		pub, err := btcec.ParsePubKey(node[:])
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i, err)
		}

		sphinxPath[i] = sphinx.OnionHop{
			NodePub: *pub,
			HopPayload: sphinx.HopPayload{
				Type:    sphinx.PayloadTLV,
				Payload: payloads[i],
			},
		}
	}

	return sphinx.NewOnionPacket(
		&sphinxPath, sessionKey, assocData,
		sphinx.DeterministicPacketFiller,
		sphinx.WithMaxPayloadSize(payloadSize),
	)
}

// OnionRequest holds the payment details the trampoline onion commits to.
type OnionRequest struct {
	// Amount is the amount the receiver gets.
	Amount lnwire.MilliSatoshi

	// FinalCLTV is the absolute expiry of the receiver's HTLC.
	FinalCLTV uint32

	// TotalAmount is the total amount of the payment across all parts.
	TotalAmount lnwire.MilliSatoshi

	// PaymentHash is used as the onion's associated data.
	PaymentHash lntypes.Hash

	// PaymentAddr is the payment secret of the invoice.
	PaymentAddr [32]byte
}

// OnionResult is a trampoline onion along with the HTLC that carries it to
// the first trampoline.
type OnionResult struct {
	// Packet is the trampoline onion.
	Packet *sphinx.OnionPacket

	// Payloads are the payloads of the onion's hops.
	Payloads []*hop.Payload

	// Amount is the amount to send to the first trampoline.
	Amount lnwire.MilliSatoshi

	// CLTV is the absolute expiry of the HTLC to the first trampoline.
	CLTV uint32
}

// BuildOnion derives the hop payloads of a trampoline route and wraps them
// in an onion.
func (b *Builder) BuildOnion(rt *Route,
	req *OnionRequest) (*OnionResult, error) {

	payloads, amt, cltv, err := hop.CalcPayloads(
		rt.policies(), req.Amount, req.FinalCLTV, req.TotalAmount,
		req.PaymentAddr,
	)
	if err != nil {
		return nil, err
	}

	var (
		numHops  = len(rt.Edges)
		relayIdx = -1
	)
	for i, edge := range rt.Edges {
		payload := payloads[i]

		// Trampolines find their own channel to the next node.
		if i < numHops-1 {
			payload.NextChannel = fn.None[lnwire.ShortChannelID]()
			payload.OutgoingNodeID = fn.Some(rt.Edges[i+1].EndNode)
		}

		if i == numHops-1 {
			payload.MPP = lnrecord.NewMPP(
				req.TotalAmount, req.PaymentAddr,
			)
		}

		if i == numHops-2 && edge.LegacyRelay != nil {
			payload.OutgoingNodeID = fn.Some(
				edge.LegacyRelay.OutgoingNodeID,
			)
			payload.InvoiceFeatures = fn.Some(
				edge.LegacyRelay.InvoiceFeatures,
			)
			payload.MPP = lnrecord.NewMPP(
				req.TotalAmount, req.PaymentAddr,
			)
			relayIdx = i
		}
	}

	if relayIdx >= 0 {
		err := b.packRoutingInfo(
			payloads, relayIdx, rt.Edges[relayIdx].LegacyRelay,
		)
		if err != nil {
			return nil, err
		}
	}

	encoded := make([][]byte, 0, numHops)
	for i, payload := range payloads {
		payloadBytes, err := payload.Bytes()
		if err != nil {
			return nil, fmt.Errorf("unable to encode payload %d: "+
				"%w", i, err)
		}
		encoded = append(encoded, payloadBytes)
	}

	log.Tracef("Trampoline payloads: %v", newLogClosure(func() string {
		return spew.Sdump(payloads)
	}))

	sessionKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	packet, err := b.cfg.Onion.NewOnionPacket(
		rt.NodeKeys(), sessionKey, encoded, req.PaymentHash[:], true,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create trampoline onion: "+
			"%w", err)
	}

	return &OnionResult{
		Packet:   packet,
		Payloads: payloads,
		Amount:   amt,
		CLTV:     cltv,
	}, nil
}

// packRoutingInfo adds as many of the relay's route hints to its payload as
// fit in the onion. The hints are shuffled so that retries try different
// ones.
func (b *Builder) packRoutingInfo(payloads []*hop.Payload, relayIdx int,
	relay *LegacyRelay) error {

	hints := make([][]byte, len(relay.RoutingInfo))
	copy(hints, relay.RoutingInfo)
	b.cfg.Rand.Shuffle(len(hints), func(i, j int) {
		hints[i], hints[j] = hints[j], hints[i]
	})

	remaining := TrampolineHopsDataSize - routingInfoOverhead
	for i, payload := range payloads {
		payloadBytes, err := payload.Bytes()
		if err != nil {
			return fmt.Errorf("unable to encode payload %d: %w",
				i, err)
		}
		remaining -= hop.SerializedSize(payloadBytes) + PerHopHMACSize
	}

	var (
		routingInfo = make([]byte, 0, TrampolineHopsDataSize)
		used        int
	)
	for _, hint := range hints {
		if remaining < minRoutingInfoSpace {
			break
		}
		if len(hint) > remaining {
			continue
		}

		routingInfo = append(routingInfo, hint...)
		remaining -= len(hint)
		used++
	}

	payloads[relayIdx].RoutingInfo = fn.Some(routingInfo)

	log.Debugf("Using %d of %d route hints", used, len(hints))

	return nil
}
