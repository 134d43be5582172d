// Package trampoline contains the table of known trampoline forwarders for
// each network.
package trampoline

import (
	"bytes"
	"encoding/hex"
	"net"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
)

// DefaultPort is the port trampoline forwarders listen on unless stated
// otherwise.
const DefaultPort = 9735

const (
	eclairMainnetKey = "02576fe2dfc26879c751a38f69a1e6b6d6646fa3edf045d5534d8674a188c7da81"
	eclairTestnetKey = "021fedfc02b43971339bf9052e2c639e182be6565435d1606761718352be666f15"
)

// TODO: some node keys have more than one reachable address,
// the table should hold all of them.
func mainnetNodes() map[string]*lnwire.NetAddress {
	return map[string]*lnwire.NetAddress{
		"eclair": mustNetAddress(
			eclairMainnetKey, "82.196.13.206",
			chaincfg.MainNetParams.Net,
		),
	}
}

func testnetNodes() map[string]*lnwire.NetAddress {
	return map[string]*lnwire.NetAddress{
		"eclair testnet": mustNetAddress(
			eclairTestnetKey, "108.61.99.169",
			chaincfg.TestNet3Params.Net,
		),
	}
}

func testnet4Nodes() map[string]*lnwire.NetAddress {
	return map[string]*lnwire.NetAddress{}
}

func signetNodes() map[string]*lnwire.NetAddress {
	return map[string]*lnwire.NetAddress{
		"eclair signet": mustNetAddress(
			eclairTestnetKey, "108.61.99.169",
			chaincfg.SigNetParams.Net,
		),
	}
}

func mustNetAddress(pubKeyStr, host string,
	chainNet wire.BitcoinNet) *lnwire.NetAddress {

	keyBytes, err := hex.DecodeString(pubKeyStr)
	if err != nil {
		panic(err)
	}
	pubKey, err := btcec.ParsePubKey(keyBytes)
	if err != nil {
		panic(err)
	}

	return &lnwire.NetAddress{
		IdentityKey: pubKey,
		Address: &net.TCPAddr{
			IP:   net.ParseIP(host),
			Port: DefaultPort,
		},
		ChainNet: chainNet,
	}
}

// nodesForNetwork returns the hardcoded table for the given network, or an
// empty one if we don't know any trampolines there.
func nodesForNetwork(params *chaincfg.Params) map[string]*lnwire.NetAddress {
	if params == nil {
		return map[string]*lnwire.NetAddress{}
	}

	switch params.Name {
	case chaincfg.MainNetParams.Name:
		return mainnetNodes()

	case chaincfg.TestNet3Params.Name, "testnet":
		return testnetNodes()

	case "testnet4":
		return testnet4Nodes()

	case chaincfg.SigNetParams.Name:
		return signetNodes()

	default:
		return map[string]*lnwire.NetAddress{}
	}
}

// RegistryConfig houses the parameters used to select the trampoline
// table.
type RegistryConfig struct {
	// ChainParams is the active network.
	ChainParams *chaincfg.Params

	// Overrides, when non-empty, replaces the network's table entirely.
	Overrides map[string]*lnwire.NetAddress
}

// Registry is a read-only view of the trampoline forwarders known for a
// network. It is safe for concurrent use.
type Registry struct {
	nodes map[string]*lnwire.NetAddress
	byKey map[route.Vertex]*lnwire.NetAddress
}

// NewRegistry selects the trampoline table for the configured network.
func NewRegistry(cfg *RegistryConfig) *Registry {
	var nodes map[string]*lnwire.NetAddress
	if len(cfg.Overrides) != 0 {
		nodes = make(map[string]*lnwire.NetAddress, len(cfg.Overrides))
		for name, addr := range cfg.Overrides {
			nodes[name] = addr
		}
	} else {
		nodes = nodesForNetwork(cfg.ChainParams)
	}

	byKey := make(map[route.Vertex]*lnwire.NetAddress, len(nodes))
	for _, addr := range nodes {
		byKey[route.NewVertex(addr.IdentityKey)] = addr
	}

	return &Registry{
		nodes: nodes,
		byKey: byKey,
	}
}

// Nodes returns a copy of the table keyed by trampoline name.
func (r *Registry) Nodes() map[string]*lnwire.NetAddress {
	nodes := make(map[string]*lnwire.NetAddress, len(r.nodes))
	for name, addr := range r.nodes {
		nodes[name] = addr
	}

	return nodes
}

// Lookup returns the address of the trampoline with the given name.
func (r *Registry) Lookup(name string) (*lnwire.NetAddress, bool) {
	addr, ok := r.nodes[name]
	return addr, ok
}

// ByNodeKey returns a copy of the table keyed by node key.
func (r *Registry) ByNodeKey() map[route.Vertex]*lnwire.NetAddress {
	byKey := make(map[route.Vertex]*lnwire.NetAddress, len(r.byKey))
	for key, addr := range r.byKey {
		byKey[key] = addr
	}

	return byKey
}

// LookupByKey returns the address of the trampoline with the given node key.
func (r *Registry) LookupByKey(key route.Vertex) (*lnwire.NetAddress, bool) {
	addr, ok := r.byKey[key]
	return addr, ok
}

// IsTrampoline returns true if the node is a known trampoline forwarder.
func (r *Registry) IsTrampoline(key route.Vertex) bool {
	_, ok := r.byKey[key]
	return ok
}

// NodeKeys returns the keys of all known trampolines in ascending order.
func (r *Registry) NodeKeys() []route.Vertex {
	keys := make([]route.Vertex, 0, len(r.byKey))
	for key := range r.byKey {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	return keys
}
