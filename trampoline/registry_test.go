package trampoline

import (
	"net"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/stretchr/testify/require"
)

func mustVertex(t *testing.T, key string) route.Vertex {
	v, err := route.NewVertexFromStr(key)
	require.NoError(t, err)

	return v
}

// TestNetworkSelection tests that the table is picked by network name.
func TestNetworkSelection(t *testing.T) {
	t.Parallel()

	testnet4 := chaincfg.TestNet3Params
	testnet4.Name = "testnet4"

	tests := []struct {
		name   string
		params *chaincfg.Params
		names  []string
	}{
		{
			name:   "mainnet",
			params: &chaincfg.MainNetParams,
			names:  []string{"eclair"},
		},
		{
			name:   "testnet",
			params: &chaincfg.TestNet3Params,
			names:  []string{"eclair testnet"},
		},
		{
			name:   "testnet4",
			params: &testnet4,
		},
		{
			name:   "signet",
			params: &chaincfg.SigNetParams,
			names:  []string{"eclair signet"},
		},
		{
			name:   "regtest",
			params: &chaincfg.RegressionNetParams,
		},
		{
			name: "no network",
		},
	}

	for _, testCase := range tests {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			registry := NewRegistry(&RegistryConfig{
				ChainParams: testCase.params,
			})

			nodes := registry.Nodes()
			require.Len(t, nodes, len(testCase.names))
			for _, name := range testCase.names {
				_, ok := registry.Lookup(name)
				require.True(t, ok, name)
			}
		})
	}
}

// TestLookups tests the name and key based lookups of the registry.
func TestLookups(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(&RegistryConfig{
		ChainParams: &chaincfg.MainNetParams,
	})

	eclair := mustVertex(t, eclairMainnetKey)
	require.True(t, registry.IsTrampoline(eclair))
	require.False(t, registry.IsTrampoline(route.Vertex{}))

	addr, ok := registry.LookupByKey(eclair)
	require.True(t, ok)
	require.Equal(t, "82.196.13.206:9735", addr.Address.String())

	byName, ok := registry.Lookup("eclair")
	require.True(t, ok)
	require.Same(t, addr, byName)

	require.Equal(t, []route.Vertex{eclair}, registry.NodeKeys())
	require.Contains(t, registry.ByNodeKey(), eclair)

	_, ok = registry.Lookup("acinq")
	require.False(t, ok)
}

// TestOverrides tests that an override table always wins over the network
// table, and that the registry does not share the caller's map.
func TestOverrides(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	overrides := map[string]*lnwire.NetAddress{
		"local": {
			IdentityKey: privKey.PubKey(),
			Address: &net.TCPAddr{
				IP:   net.ParseIP("127.0.0.1"),
				Port: 9736,
			},
		},
	}

	registry := NewRegistry(&RegistryConfig{
		ChainParams: &chaincfg.MainNetParams,
		Overrides:   overrides,
	})

	require.Len(t, registry.Nodes(), 1)
	require.True(
		t, registry.IsTrampoline(route.NewVertex(privKey.PubKey())),
	)
	require.False(t, registry.IsTrampoline(
		mustVertex(t, eclairMainnetKey),
	))

	// Mutating the caller's table or a returned copy doesn't alter the
	// registry.
	delete(overrides, "local")
	nodes := registry.Nodes()
	delete(nodes, "local")
	_, ok := registry.Lookup("local")
	require.True(t, ok)

	// An empty override table falls back to network selection.
	registry = NewRegistry(&RegistryConfig{
		ChainParams: &chaincfg.MainNetParams,
		Overrides:   map[string]*lnwire.NetAddress{},
	})
	_, ok = registry.Lookup("eclair")
	require.True(t, ok)
}
