package hop

import (
	"bytes"
	"io"

	sphinx "github.com/lightningnetwork/lightning-onion"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	lnrecord "github.com/lightningnetwork/lnd/record"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/lnd/tlv"
	"github.com/lightningnetwork/trampoline/record"
)

// Payload is the set of forwarding instructions a single hop of a
// trampoline onion is given.
type Payload struct {
	// AmountToForward is the amount the hop should forward.
	AmountToForward lnwire.MilliSatoshi

	// OutgoingCLTV is the absolute expiry the hop should use for the HTLC
	// it forwards.
	OutgoingCLTV uint32

	// NextChannel is the channel the hop should forward over. Trampoline
	// payloads never carry it, the trampoline picks its own channel to
	// reach OutgoingNodeID.
	NextChannel fn.Option[lnwire.ShortChannelID]

	// OutgoingNodeID is the node a trampoline should forward to.
	OutgoingNodeID fn.Option[route.Vertex]

	// MPP holds the payment secret and total amount for the hop that
	// terminates the payment, or relays it to a legacy receiver.
	MPP *lnrecord.MPP

	// InvoiceFeatures are the lowest 64 bits of the receiver's invoice
	// features, set for a legacy relay.
	InvoiceFeatures fn.Option[uint64]

	// RoutingInfo holds the concatenated encoded route hints for a legacy
	// relay. It may be present but empty if no hint fit in the onion.
	RoutingInfo fn.Option[[]byte]

	// CustomRecords are any additional records in the custom range.
	CustomRecords record.CustomSet
}

// Encode writes the payload as a tlv stream.
func (p *Payload) Encode(w io.Writer) error {
	amt := uint64(p.AmountToForward)
	cltv := p.OutgoingCLTV

	records := []tlv.Record{
		lnrecord.NewAmtToFwdRecord(&amt),
		lnrecord.NewLockTimeRecord(&cltv),
	}

	p.NextChannel.WhenSome(func(scid lnwire.ShortChannelID) {
		chanID := scid.ToUint64()
		records = append(records, lnrecord.NewNextHopIDRecord(&chanID))
	})

	if p.MPP != nil {
		records = append(records, p.MPP.Record())
	}

	p.InvoiceFeatures.WhenSome(func(features uint64) {
		records = append(
			records, record.NewInvoiceFeaturesRecord(&features),
		)
	})

	p.OutgoingNodeID.WhenSome(func(node route.Vertex) {
		nodeID := [33]byte(node)
		records = append(records, record.NewOutgoingNodeRecord(&nodeID))
	})

	p.RoutingInfo.WhenSome(func(info []byte) {
		records = append(
			records, record.NewInvoiceRoutingInfoRecord(&info),
		)
	})

	if err := p.CustomRecords.Validate(); err != nil {
		return err
	}
	for recordType, value := range p.CustomRecords {
		value := value
		records = append(records, tlv.MakePrimitiveRecord(
			tlv.Type(recordType), &value,
		))
	}

	tlv.SortRecords(records)

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}

	return stream.Encode(w)
}

// Bytes returns the encoded tlv stream of the payload.
func (p *Payload) Bytes() ([]byte, error) {
	var b bytes.Buffer
	if err := p.Encode(&b); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// SerializedSize returns the number of bytes an encoded payload occupies in
// an onion's hop data: its length prefix, the payload itself and the HMAC.
func SerializedSize(payload []byte) int {
	return int(tlv.VarIntSize(uint64(len(payload)))) + len(payload) +
		sphinx.HMACSize
}

// DecodePayload parses a tlv payload produced by Encode.
func DecodePayload(r io.Reader) (*Payload, error) {
	var (
		amt      uint64
		cltv     uint32
		chanID   uint64
		mpp      = &lnrecord.MPP{}
		features uint64
		nodeID   [33]byte
		info     []byte
	)

	stream, err := tlv.NewStream(
		lnrecord.NewAmtToFwdRecord(&amt),
		lnrecord.NewLockTimeRecord(&cltv),
		lnrecord.NewNextHopIDRecord(&chanID),
		mpp.Record(),
		record.NewInvoiceFeaturesRecord(&features),
		record.NewOutgoingNodeRecord(&nodeID),
		record.NewInvoiceRoutingInfoRecord(&info),
	)
	if err != nil {
		return nil, err
	}

	parsedTypes, err := stream.DecodeWithParsedTypes(r)
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		AmountToForward: lnwire.MilliSatoshi(amt),
		OutgoingCLTV:    cltv,
		CustomRecords:   record.NewCustomRecords(parsedTypes),
	}

	if _, ok := parsedTypes[lnrecord.NextHopOnionType]; ok {
		payload.NextChannel = fn.Some(
			lnwire.NewShortChanIDFromInt(chanID),
		)
	}

	if _, ok := parsedTypes[lnrecord.MPPOnionType]; ok {
		payload.MPP = mpp
	}

	if _, ok := parsedTypes[record.InvoiceFeaturesOnionType]; ok {
		payload.InvoiceFeatures = fn.Some(features)
	}

	if _, ok := parsedTypes[record.OutgoingNodeOnionType]; ok {
		payload.OutgoingNodeID = fn.Some(route.Vertex(nodeID))
	}

	if _, ok := parsedTypes[record.InvoiceRoutingInfoOnionType]; ok {
		payload.RoutingInfo = fn.Some(info)
	}

	return payload, nil
}
