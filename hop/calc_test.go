package hop

import (
	"math"
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/stretchr/testify/require"
)

// TestPolicyFee tests calculation of the fee charged by an edge.
func TestPolicyFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy Policy
		amt    lnwire.MilliSatoshi
		fee    lnwire.MilliSatoshi
	}{
		{
			name:   "zero policy",
			amt:    100_000,
			policy: Policy{},
		},
		{
			name:   "only base fee",
			amt:    100_000,
			policy: Policy{BaseFee: 1000},
			fee:    1000,
		},
		{
			name: "composite fee",
			amt:  10_000_000,
			policy: Policy{
				BaseFee: 1000,
				FeeRate: 1,
			},
			fee: 1010,
		},
		{
			name: "proportional rounds down",
			amt:  999_999,
			policy: Policy{
				FeeRate: 1,
			},
			fee: 0,
		},
		{
			name: "maximum fee rate",
			amt:  1_000_000,
			policy: Policy{
				FeeRate: math.MaxUint32,
			},
			fee: math.MaxUint32,
		},
	}

	for _, testCase := range tests {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			fee := testCase.policy.Fee(testCase.amt)
			require.Equal(t, testCase.fee, fee)
		})
	}
}

// TestCalcPayloads tests that amounts and expiries accumulate from the
// receiver back to the sender, skipping the sender's own edge.
func TestCalcPayloads(t *testing.T) {
	t.Parallel()

	policies := []Policy{
		// Our own channel, never charged.
		{BaseFee: 1_000_000, CLTVDelta: 1000},
		{BaseFee: 500, CLTVDelta: 576},
		{BaseFee: 250, FeeRate: 1000, CLTVDelta: 576},
	}

	payloads, amt, cltv, err := CalcPayloads(
		policies, 100_000, 800_144, 200_000, testAddr,
	)
	require.NoError(t, err)
	require.Len(t, payloads, 3)

	// The final hop gets the exact amount and payment data.
	final := payloads[2]
	require.Equal(t, lnwire.MilliSatoshi(100_000), final.AmountToForward)
	require.Equal(t, uint32(800_144), final.OutgoingCLTV)
	require.NotNil(t, final.MPP)
	require.Equal(t, lnwire.MilliSatoshi(200_000), final.MPP.TotalMsat())
	require.Equal(t, testAddr, final.MPP.PaymentAddr())
	require.True(t, final.NextChannel.IsNone())

	// The hop before pays the last edge: 250 + 100_000*1000/1e6 = 350.
	require.Equal(t, lnwire.MilliSatoshi(100_000),
		payloads[1].AmountToForward)
	require.Equal(t, uint32(800_144), payloads[1].OutgoingCLTV)
	require.Equal(
		t, fn.Some(lnwire.ShortChannelID{}), payloads[1].NextChannel,
	)

	require.Equal(t, lnwire.MilliSatoshi(100_350),
		payloads[0].AmountToForward)
	require.Equal(t, uint32(800_720), payloads[0].OutgoingCLTV)

	require.Equal(t, lnwire.MilliSatoshi(100_850), amt)
	require.Equal(t, uint32(801_296), cltv)
}

// TestCalcPayloadsLength tests path length validation.
func TestCalcPayloadsLength(t *testing.T) {
	t.Parallel()

	_, _, _, err := CalcPayloads(nil, 1, 1, 1, testAddr)
	require.ErrorIs(t, err, ErrNoHops)

	_, _, _, err = CalcPayloads(make([]Policy, 100), 1, 1, 1, testAddr)
	require.ErrorIs(t, err, ErrTooManyHops)

	payloads, amt, cltv, err := CalcPayloads(
		[]Policy{{BaseFee: 10, CLTVDelta: 10}}, 5, 6, 5, testAddr,
	)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	require.Equal(t, lnwire.MilliSatoshi(5), amt)
	require.Equal(t, uint32(6), cltv)
}
