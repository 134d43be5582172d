package routing

import (
	"math/rand"
	"net"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/trampoline/hophints"
	"github.com/lightningnetwork/trampoline/trampoline"
	"github.com/stretchr/testify/require"
)

// testKey returns a deterministic private key for the given seed.
func testKey(seed byte) *btcec.PrivateKey {
	var b [32]byte
	b[31] = seed
	priv, _ := btcec.PrivKeyFromBytes(b[:])

	return priv
}

// testNode returns the node key belonging to testKey(seed).
func testNode(seed byte) route.Vertex {
	return route.NewVertex(testKey(seed).PubKey())
}

var (
	sender   = testNode(1)
	t1       = testNode(2)
	t2       = testNode(3)
	t3       = testNode(4)
	receiver = testNode(10)
	hintNode = testNode(11)

	e2eFeatures = lnwire.NewFeatureVector(
		lnwire.NewRawFeatureVector(TrampolineRoutingOptionalElectrum),
		TrampolineFeatureNames,
	)

	legacyFeatures = lnwire.NewFeatureVector(
		lnwire.NewRawFeatureVector(
			lnwire.TLVOnionPayloadOptional,
			lnwire.PaymentAddrRequired,
		), lnwire.Features,
	)

	testBudget = FeeBudget{
		FeeMsat:   1_000_000,
		CLTVDelta: MaxCLTVDelta,
	}

	testPaymentAddr = [32]byte{1, 2, 3}
)

// testRegistry returns a registry holding the given trampolines.
func testRegistry(t *testing.T, nodes ...byte) *trampoline.Registry {
	overrides := make(map[string]*lnwire.NetAddress)
	for i, seed := range nodes {
		overrides[string(rune('a'+i))] = &lnwire.NetAddress{
			IdentityKey: testKey(seed).PubKey(),
			Address: &net.TCPAddr{
				IP:   net.ParseIP("127.0.0.1"),
				Port: 9735 + i,
			},
		}
	}

	registry := trampoline.NewRegistry(&trampoline.RegistryConfig{
		Overrides: overrides,
	})
	require.Len(t, registry.NodeKeys(), len(nodes))

	return registry
}

// testBuilder returns a builder over trampolines t1, t2 and t3 with a seeded
// random source.
func testBuilder(t *testing.T, seed int64) *Builder {
	return NewBuilder(&Config{
		Registry: testRegistry(t, 2, 3, 4),
		Rand:     rand.New(rand.NewSource(seed)),
	})
}

// singleHopHint returns a route hint with a single step from node.
func singleHopHint(node route.Vertex, scid uint64) hophints.RouteHint {
	return hophints.RouteHint{{
		NodeID:                    node,
		ChannelID:                 lnwire.NewShortChanIDFromInt(scid),
		FeeBaseMSat:               1000,
		FeeProportionalMillionths: 100,
		CLTVExpiryDelta:           40,
	}}
}

// legacyHints returns route hints that don't name a trampoline.
func legacyHints() []hophints.RouteHint {
	twoHops := append(
		singleHopHint(testNode(12), 2), singleHopHint(hintNode, 3)...,
	)

	return []hophints.RouteHint{
		singleHopHint(hintNode, 1),
		twoHops,
	}
}

// legacyRequest returns a request to pay a legacy receiver through t1.
func legacyRequest() *RouteRequest {
	return &RouteRequest{
		Amount:            100_000_000,
		MinFinalCLTVDelta: 144,
		Receiver:          receiver,
		InvoiceFeatures:   legacyFeatures,
		Sender:            sender,
		SenderTrampoline:  t1,
		Hints:             legacyHints(),
		FeeLevel:          MaxFeeLevel,
		Budget:            testBudget,
	}
}
