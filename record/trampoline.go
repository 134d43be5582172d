package record

import (
	"github.com/lightningnetwork/lnd/tlv"
)

const (
	// InvoiceFeaturesOnionType is the type used in a trampoline onion to
	// pass the receiver's invoice features to a legacy relay.
	InvoiceFeaturesOnionType tlv.Type = 66097

	// OutgoingNodeOnionType is the type used in a trampoline onion to name
	// the node a trampoline should forward to. It replaces the
	// short_channel_id of regular onions, trampolines pick their own
	// outgoing channel.
	OutgoingNodeOnionType tlv.Type = 66098

	// InvoiceRoutingInfoOnionType is the type used in a trampoline onion to
	// carry the receiver's encoded routing hints to a legacy relay.
	InvoiceRoutingInfoOnionType tlv.Type = 66099
)

// NewInvoiceFeaturesRecord creates a tlv.Record that encodes the
// invoice_features (type 66097) for a trampoline payload. Only the lowest 64
// feature bits are carried.
func NewInvoiceFeaturesRecord(features *uint64) tlv.Record {
	return tlv.MakePrimitiveRecord(InvoiceFeaturesOnionType, features)
}

// NewOutgoingNodeRecord creates a tlv.Record that encodes the
// outgoing_node_id (type 66098) for a trampoline payload.
func NewOutgoingNodeRecord(node *[33]byte) tlv.Record {
	return tlv.MakePrimitiveRecord(OutgoingNodeOnionType, node)
}

// NewInvoiceRoutingInfoRecord creates a tlv.Record that encodes the
// invoice_routing_info (type 66099) for a trampoline payload.
func NewInvoiceRoutingInfoRecord(info *[]byte) tlv.Record {
	return tlv.MakePrimitiveRecord(InvoiceRoutingInfoOnionType, info)
}

// IsTrampolineType returns true if the type is one of the trampoline records
// understood by this package.
func IsTrampolineType(t tlv.Type) bool {
	switch t {
	case InvoiceFeaturesOnionType, OutgoingNodeOnionType,
		InvoiceRoutingInfoOnionType:

		return true

	default:
		return false
	}
}
