// Package hophints holds the receiver supplied private channel hints of an
// invoice and the compact binary form in which they are handed to a
// trampoline that relays a payment to a receiver without trampoline
// support.
package hophints

import (
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/lnd/zpay32"
)

// HopHint is a single step of a route hint: a private channel from NodeID
// towards the receiver, along with the policy NodeID charges for it.
type HopHint struct {
	// NodeID is the node at the start of the private channel.
	NodeID route.Vertex

	// ChannelID is the short channel id of the private channel.
	ChannelID lnwire.ShortChannelID

	// FeeBaseMSat is the base fee of the channel in millisatoshis.
	FeeBaseMSat uint32

	// FeeProportionalMillionths is the proportional fee of the channel.
	FeeProportionalMillionths uint32

	// CLTVExpiryDelta is the time-lock delta of the channel.
	CLTVExpiryDelta uint16
}

// String returns a human readable representation of the hop hint.
func (h HopHint) String() string {
	return fmt.Sprintf("%v(%v, base=%v, rate=%v, cltv=%v)", h.NodeID,
		h.ChannelID, h.FeeBaseMSat, h.FeeProportionalMillionths,
		h.CLTVExpiryDelta)
}

// RouteHint is an ordered list of hop hints that leads to the receiver.
type RouteHint []HopHint

// String returns a human readable representation of the route hint.
func (r RouteHint) String() string {
	steps := make([]string, len(r))
	for i, hint := range r {
		steps[i] = hint.String()
	}

	return "[" + strings.Join(steps, " -> ") + "]"
}

// FromInvoice converts the route hints of a decoded invoice.
func FromInvoice(invoiceHints [][]zpay32.HopHint) []RouteHint {
	hints := make([]RouteHint, 0, len(invoiceHints))
	for _, invoiceHint := range invoiceHints {
		hint := make(RouteHint, 0, len(invoiceHint))
		for _, hopHint := range invoiceHint {
			hint = append(hint, HopHint{
				NodeID: route.NewVertex(hopHint.NodeID),
				ChannelID: lnwire.NewShortChanIDFromInt(
					hopHint.ChannelID,
				),
				FeeBaseMSat: hopHint.FeeBaseMSat,
				FeeProportionalMillionths: hopHint.
					FeeProportionalMillionths,
				CLTVExpiryDelta: hopHint.CLTVExpiryDelta,
			})
		}

		hints = append(hints, hint)
	}

	return hints
}
