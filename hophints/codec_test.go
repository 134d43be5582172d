package hophints

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const pubkeyStr = "02eec7245d6b7d2ccb30380bfbe2a3648cd7a942653f5aa340edcea1f283686619"

func vertex(t *testing.T) route.Vertex {
	v, err := route.NewVertexFromStr(pubkeyStr)
	require.NoError(t, err)

	return v
}

// TestEncodeLayout asserts the byte exact layout of an encoded route hint.
func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	node := vertex(t)
	hint := RouteHint{{
		NodeID:                    node,
		ChannelID:                 lnwire.NewShortChanIDFromInt(0x0102),
		FeeBaseMSat:               1000,
		FeeProportionalMillionths: 1,
		CLTVExpiryDelta:           40,
	}}

	blobs, err := Encode([]RouteHint{hint})
	require.NoError(t, err)
	require.Len(t, blobs, 1)

	expected := []byte{1}
	expected = append(expected, node[:]...)
	expected = append(expected, 0, 0, 0, 0, 0, 0, 0x01, 0x02)
	expected = append(expected, 0, 0, 0x03, 0xe8)
	expected = append(expected, 0, 0, 0, 1)
	expected = append(expected, 0, 40)

	require.Equal(t, expected, blobs[0])
	require.Len(t, blobs[0], EncodedSize(hint))
}

// TestDecode tests decoding of well formed and truncated routing info.
func TestDecode(t *testing.T) {
	t.Parallel()

	node := vertex(t)
	hints := []RouteHint{
		{
			{NodeID: node, FeeBaseMSat: 1},
		},
		{
			{NodeID: node, CLTVExpiryDelta: 144},
			{NodeID: node, FeeProportionalMillionths: 10},
		},
	}
	blobs, err := Encode(hints)
	require.NoError(t, err)

	concat := bytes.Join(blobs, nil)

	tests := []struct {
		name     string
		data     []byte
		expected []RouteHint
		err      error
	}{
		{
			name:     "empty",
			data:     nil,
			expected: []RouteHint{},
		},
		{
			name:     "two hints",
			data:     concat,
			expected: hints,
		},
		{
			name: "truncated hop",
			data: concat[:len(concat)-1],
			err:  ErrMalformedRoutingInfo,
		},
		{
			name: "missing hop",
			data: []byte{2},
			err:  ErrMalformedRoutingInfo,
		},
	}

	for _, testCase := range tests {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			decoded, err := Decode(testCase.data)
			require.ErrorIs(t, err, testCase.err)
			if testCase.err != nil {
				return
			}

			require.Equal(t, testCase.expected, decoded)
		})
	}
}

// TestEncodeTooManyHops tests that a hint whose length does not fit in the
// count byte is rejected.
func TestEncodeTooManyHops(t *testing.T) {
	t.Parallel()

	_, err := Encode([]RouteHint{make(RouteHint, 256)})
	require.ErrorIs(t, err, ErrTooManyHops)
}

func genHopHint(t *rapid.T) HopHint {
	var node route.Vertex
	copy(node[:], rapid.SliceOfN(rapid.Byte(), 33, 33).Draw(t, "node"))

	return HopHint{
		NodeID: node,
		ChannelID: lnwire.NewShortChanIDFromInt(
			rapid.Uint64().Draw(t, "scid"),
		),
		FeeBaseMSat:               rapid.Uint32().Draw(t, "base"),
		FeeProportionalMillionths: rapid.Uint32().Draw(t, "rate"),
		CLTVExpiryDelta:           rapid.Uint16().Draw(t, "cltv"),
	}
}

// TestRoundTrip asserts that decoding the concatenated encoding of any list
// of route hints gives back the original list.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		hints := rapid.SliceOfN(
			rapid.Custom(func(t *rapid.T) RouteHint {
				return rapid.SliceOfN(
					rapid.Custom(genHopHint), 1, 5,
				).Draw(t, "hops")
			}), 1, 10,
		).Draw(t, "hints")

		blobs, err := Encode(hints)
		if err != nil {
			t.Fatalf("unable to encode: %v", err)
		}

		decoded, err := Decode(bytes.Join(blobs, nil))
		if err != nil {
			t.Fatalf("unable to decode: %v", err)
		}

		require.Equal(t, hints, decoded)
	})
}

// TestFromInvoice tests conversion of decoded invoice hints.
func TestFromInvoice(t *testing.T) {
	t.Parallel()

	keyBytes, err := hex.DecodeString(pubkeyStr)
	require.NoError(t, err)
	pubKey, err := btcec.ParsePubKey(keyBytes)
	require.NoError(t, err)

	hints := FromInvoice([][]zpay32.HopHint{
		{
			{
				NodeID:                    pubKey,
				ChannelID:                 12345,
				FeeBaseMSat:               1000,
				FeeProportionalMillionths: 1,
				CLTVExpiryDelta:           40,
			},
		},
	})

	require.Equal(t, []RouteHint{{{
		NodeID:                    vertex(t),
		ChannelID:                 lnwire.NewShortChanIDFromInt(12345),
		FeeBaseMSat:               1000,
		FeeProportionalMillionths: 1,
		CLTVExpiryDelta:           40,
	}}}, hints)
}
