package hophints

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/lightningnetwork/lnd/lnwire"
)

// HopHintSize is the encoded size of a single hop hint: node key, short
// channel id, fee base, fee rate and cltv delta.
const HopHintSize = 33 + 8 + 4 + 4 + 2

var (
	// ErrMalformedRoutingInfo is returned when encoded routing info ends
	// in the middle of a route hint.
	ErrMalformedRoutingInfo = errors.New("malformed routing info")

	// ErrTooManyHops is returned when a route hint has more steps than
	// can be counted by the single length byte.
	ErrTooManyHops = errors.New("route hint has too many hops")
)

// EncodedSize returns the number of bytes the route hint occupies once
// encoded.
func EncodedSize(hint RouteHint) int {
	return 1 + len(hint)*HopHintSize
}

// Encode serializes each route hint into its own blob. The blobs can be
// concatenated in any order and still be parsed by Decode.
func Encode(hints []RouteHint) ([][]byte, error) {
	blobs := make([][]byte, 0, len(hints))
	for i, hint := range hints {
		blob, err := encodeHint(hint)
		if err != nil {
			return nil, fmt.Errorf("route hint %d: %w", i, err)
		}

		blobs = append(blobs, blob)
	}

	return blobs, nil
}

func encodeHint(hint RouteHint) ([]byte, error) {
	if len(hint) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyHops, len(hint))
	}

	var b bytes.Buffer
	b.Grow(EncodedSize(hint))
	b.WriteByte(uint8(len(hint)))

	var buf [HopHintSize]byte
	for _, hop := range hint {
		copy(buf[:33], hop.NodeID[:])
		binary.BigEndian.PutUint64(buf[33:41], hop.ChannelID.ToUint64())
		binary.BigEndian.PutUint32(buf[41:45], hop.FeeBaseMSat)
		binary.BigEndian.PutUint32(
			buf[45:49], hop.FeeProportionalMillionths,
		)
		binary.BigEndian.PutUint16(buf[49:51], hop.CLTVExpiryDelta)

		b.Write(buf[:])
	}

	return b.Bytes(), nil
}

// Decode parses a concatenation of encoded route hints until the input is
// exhausted.
func Decode(routingInfo []byte) ([]RouteHint, error) {
	var (
		r     = bytes.NewReader(routingInfo)
		hints = make([]RouteHint, 0)
		buf   [HopHintSize]byte
	)
	for {
		numHops, err := r.ReadByte()
		if err == io.EOF {
			return hints, nil
		}
		if err != nil {
			return nil, err
		}

		hint := make(RouteHint, 0, numHops)
		for i := 0; i < int(numHops); i++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("%w: hint %d, hop %d: "+
					"%v", ErrMalformedRoutingInfo,
					len(hints), i, err)
			}

			var hop HopHint
			copy(hop.NodeID[:], buf[:33])
			hop.ChannelID = lnwire.NewShortChanIDFromInt(
				binary.BigEndian.Uint64(buf[33:41]),
			)
			hop.FeeBaseMSat = binary.BigEndian.Uint32(buf[41:45])
			hop.FeeProportionalMillionths = binary.BigEndian.Uint32(
				buf[45:49],
			)
			hop.CLTVExpiryDelta = binary.BigEndian.Uint16(
				buf[49:51],
			)

			hint = append(hint, hop)
		}

		hints = append(hints, hint)
	}
}
